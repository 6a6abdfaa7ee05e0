package routes

import (
	"net/http"

	"bizsite-backend/internal/config"
	"bizsite-backend/internal/delivery/http/handler"
	"bizsite-backend/internal/infrastructure/database/postgres"
	"bizsite-backend/internal/logger"
	"bizsite-backend/internal/mailer"
	"bizsite-backend/internal/middleware"
	"bizsite-backend/internal/usecase/auth"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, m mailer.Mailer) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	authService := auth.NewService(userRepository, m, cfg)
	authHandler := handler.NewAuthHandler(authService, cfg)
	contactHandler := handler.NewContactHandler(m, cfg)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		contactHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			authHandler.RegisterProfileRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
