package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kocaeli-bel/imar-backend/config"
	"github.com/kocaeli-bel/imar-backend/internal/app/controller"
	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/internal/app/service"
	"github.com/kocaeli-bel/imar-backend/internal/db"
	"github.com/kocaeli-bel/imar-backend/internal/router"
	"github.com/kocaeli-bel/imar-backend/internal/scheduler"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
	"github.com/kocaeli-bel/imar-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Imar Ruhsat Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; the dashboard degrades to live counts without it
	cacheEnabled := cfg.Redis.Enabled
	if cacheEnabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, dashboard caching disabled", map[string]interface{}{
				"error": err.Error(),
			})
			cacheEnabled = false
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	permitRepo := repository.NewPermitRepository(db.GetDB())
	seqRepo := repository.NewSequenceRepository(db.GetDB())

	// Initialize services
	numberingService := service.NewNumberingService(seqRepo)
	permitService := service.NewPermitService(permitRepo, numberingService)
	dashboardService := service.NewDashboardService(permitRepo, cacheEnabled)
	exportService := service.NewExportService(permitRepo)

	// Initialize controllers
	permitController := controller.NewPermitController(
		permitService,
		dashboardService,
		exportService,
		cfg.Server.WriteTimeout,
	)

	// Setup router
	r := router.NewRouter(permitController, cfg)
	engine := r.Setup()

	// Permit expiry scheduler
	if cfg.Scheduler.Enabled {
		expiryScheduler := scheduler.NewExpiryScheduler(permitService, &cfg.Scheduler)
		if err := expiryScheduler.Start(); err != nil {
			logger.Fatal("Failed to start expiry scheduler", err)
		}
		defer expiryScheduler.Stop()
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
