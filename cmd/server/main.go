package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/config"
	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/handlers"
	"github.com/erhmprah/ebook/internal/middleware"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/routes"
	"github.com/erhmprah/ebook/internal/services"
	"github.com/erhmprah/ebook/internal/storage"
	"github.com/erhmprah/ebook/pkg/logger"
)

func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.StorageDriver == "r2" {
		return storage.NewR2Store(cfg, "uploads")
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
}

func main() {
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting ebook backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.UserProfile{},
		&models.UserSettings{},
		&models.UserSession{},
		&models.ActivityLog{},
		&models.Book{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	logger.Info().Msg("Database migrations complete")

	// Blob store backend is picked by config, never by business logic.
	store, err := buildBlobStore(config.AppConfig)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", config.AppConfig.StorageDriver).Msg("Failed to initialize blob store")
	}
	logger.Info().Str("driver", config.AppConfig.StorageDriver).Msg("Blob store ready")

	activity := services.NewActivityLog(database.DB)
	avatarSvc := services.NewAvatarService(database.DB, store, activity)

	authHandler := handlers.NewAuthHandler(activity)
	profileHandler := handlers.NewProfileHandler(activity)
	avatarHandler := handlers.NewAvatarHandler(avatarSvc)
	sessionHandler := handlers.NewSessionHandler(activity)
	bookHandler := handlers.NewBookHandler(activity)
	uploadHandler := handlers.NewUploadHandler(store)
	pdfHandler := handlers.NewPDFHandler(store)

	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")
	{
		routes.RegisterAuthRoutes(api, authHandler)
		routes.RegisterProfileRoutes(api, profileHandler, avatarHandler, sessionHandler)
		routes.RegisterBookRoutes(api, bookHandler, pdfHandler)
		routes.RegisterAdminRoutes(api, uploadHandler)
	}

	// Locally stored uploads are served directly; with the R2 driver the
	// locators already point at the CDN.
	if config.AppConfig.StorageDriver != "r2" {
		r.Static("/uploads", config.AppConfig.UploadDir)
	}

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != "not configured") {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
}
