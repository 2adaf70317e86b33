package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port     string
	Env      string
	MongoURI string
	MongoDB  string

	JWTSecret string

	// Admin credentials are supplied out of band. The password is stored
	// as a bcrypt hash so the plaintext never lives in the environment.
	AdminID           string
	AdminPasswordHash string

	// Optional. Empty disables the post-list cache.
	RedisAddr string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("APP_ENV", "dev"),
		MongoURI:          getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:           getEnv("MONGO_DB", "retroboard"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminID:           os.Getenv("ADMIN_ID"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.AdminID == "" || cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_ID and ADMIN_PASSWORD_HASH must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
