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

	"github.com/celprep/practice-service/internal/cache"
	"github.com/celprep/practice-service/internal/catalog"
	"github.com/celprep/practice-service/internal/config"
	"github.com/celprep/practice-service/internal/events"
	"github.com/celprep/practice-service/internal/handlers"
	"github.com/celprep/practice-service/internal/repositories/postgres"
	"github.com/celprep/practice-service/internal/services"
	"github.com/celprep/practice-service/internal/session"
	"github.com/celprep/practice-service/internal/utils"
	"github.com/celprep/practice-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogLogger)

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.EventTopic,
		Logger:       slogLogger,
	})
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	cat, err := catalog.Default()
	if err != nil {
		logger.Error("Failed to build practice catalog", "error", err)
		os.Exit(1)
	}

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repository:   repo,
		Cache:        cacheService,
		Publisher:    publisher,
		Catalog:      cat,
		Validator:    utils.NewValidator(),
		Logger:       slogLogger,
		MicPolicy:    session.MicPolicy(cfg.MicDeniedPolicy),
		TickInterval: time.Duration(cfg.TickIntervalMS) * time.Millisecond,
		TokenTTL:     time.Duration(cfg.SessionTTL) * time.Second,
	})
	defer serviceManager.Session().Shutdown()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting practice service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down practice service")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
