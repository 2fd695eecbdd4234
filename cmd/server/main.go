package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/auth"
	"github.com/nexora-edu/learning-service/internal/cache"
	"github.com/nexora-edu/learning-service/internal/config"
	"github.com/nexora-edu/learning-service/internal/handlers"
	"github.com/nexora-edu/learning-service/internal/repositories/postgres"
	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/storage"
	"github.com/nexora-edu/learning-service/internal/utils"
	"github.com/nexora-edu/learning-service/internal/validator"
	"github.com/nexora-edu/learning-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := logger.(*utils.SlogLogger).GetSlogLogger()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	var cacheSvc cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, leaderboard caching disabled", "error", err)
	} else {
		cacheSvc = cache.NewRedisCache(redisClient)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreatePublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	uploads, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize upload store", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)
	tokens := auth.NewTokenService(cfg.JWTSecret)
	v := validator.New()

	serviceManager := services.NewServiceManager(repo, tokens, cacheSvc, publisher, slogger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, tokens, uploads, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
