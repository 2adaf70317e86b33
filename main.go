package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retroboard/cache"
	"retroboard/config"
	"retroboard/database"
	"retroboard/handlers"
	"retroboard/logger"
	"retroboard/repository"
	"retroboard/routes"
	"retroboard/service"
	"retroboard/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.NewSugar(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	var client *mongo.Client
	for attempt := 1; attempt <= 3; attempt++ {
		client, err = database.Connect(cfg.MongoURI)
		if err == nil {
			break
		}
		log.Warnw("mongodb connection failed", "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	if err != nil {
		log.Fatalw("could not connect to mongodb", "error", err)
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.Errorw("mongodb disconnect failed", "error", err)
		}
	}()
	log.Infow("connected to mongodb", "database", cfg.MongoDB)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, client.Database(cfg.MongoDB)); err != nil {
		cancelIndexes()
		log.Fatalw("failed to create indexes", "error", err)
	}
	cancelIndexes()

	st := store.New(client, cfg.MongoDB, log)

	posts := repository.NewPostRepository(st)
	comments := repository.NewCommentRepository(st)
	bookmarks := repository.NewBookmarkRepository(st, posts)
	settings := repository.NewSettingsRepository(st)
	users := repository.NewUserRepository(st)

	categories := service.NewCategoryService(settings)
	backups := service.NewBackupService(repository.NewBackupStore(st), log)
	admin := service.NewAdminService(cfg.AdminID, cfg.AdminPasswordHash, cfg.JWTSecret)

	postCache := cache.New(cfg.RedisAddr, log)

	h := handlers.New(cfg, log, postCache, users, posts, comments, bookmarks, settings, categories, backups, admin)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(h, cfg.JWTSecret)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
}
