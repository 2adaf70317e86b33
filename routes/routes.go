package routes

import (
	"time"

	"retroboard/handlers"
	"retroboard/metrics"
	"retroboard/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(h *handlers.Handler, jwtSecret string) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.MetricsMiddleware())

	authLimiter := middleware.NewIPRateLimiter(20, time.Minute)
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public routes
	router.POST("/api/signup", middleware.RateLimitMiddleware(authLimiter), h.Signup)
	router.POST("/api/login", middleware.RateLimitMiddleware(authLimiter), h.Login)
	router.POST("/api/guest", middleware.RateLimitMiddleware(authLimiter), h.Guest)
	router.GET("/api/settings", h.GetSettings)
	router.GET("/api/posts", h.ListPosts)
	router.GET("/api/posts/:id", h.GetPost)
	router.GET("/api/posts/:id/comments", h.ListComments)

	// Admin session bootstrap
	router.POST("/api/admin/login", middleware.RateLimitMiddleware(adminLoginLimiter), h.AdminLogin)
	router.POST("/api/admin/refresh", h.AdminRefresh)

	// Routes requiring a signed-in user (or guest)
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(jwtSecret))

	protected.POST("/posts", h.CreatePost)
	protected.PUT("/posts/:id", h.UpdatePost)
	protected.DELETE("/posts/:id", h.DeletePost)
	protected.PUT("/posts/:id/category", h.MovePost)

	protected.POST("/posts/:id/comments", h.CreateComment)
	protected.PUT("/comments/:id", h.UpdateComment)
	protected.DELETE("/comments/:id", h.DeleteComment)

	protected.POST("/bookmarks", h.AddBookmark)
	protected.DELETE("/bookmarks/:postId", h.RemoveBookmark)
	protected.GET("/bookmarks", h.ListBookmarks)

	// Moderation routes, gated by the admin session token
	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuthMiddleware(jwtSecret))

	admin.POST("/categories", h.AddCategory)
	admin.PUT("/categories/reorder", h.ReorderCategories)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.PUT("/settings", h.UpdateSettingsFlags)
	admin.DELETE("/posts/:id", h.DeletePost)
	admin.DELETE("/comments/:id", h.DeleteComment)
	admin.POST("/backup", h.CreateBackup)
	admin.POST("/restore", h.RestoreBackup)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
