package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/mentionwatch/dashboard/internal/notifications"
	"github.com/mentionwatch/dashboard/internal/scheduler"
	"github.com/mentionwatch/dashboard/internal/storage"
	"github.com/mentionwatch/dashboard/internal/web"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting mentions dashboard")

	store, err := storage.New(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	notificationService := notifications.NewService(cfg)
	monitoringService := monitoring.NewService(cfg, store, notificationService)

	// The page is served even if the first refresh fails; it shows an empty feed.
	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := monitoringService.Refresh(initCtx); err != nil {
		logrus.Errorf("Initial refresh failed: %v", err)
	}
	initCancel()

	schedulerService := scheduler.NewService(cfg, monitoringService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	server, err := web.NewServer(cfg, monitoringService)
	if err != nil {
		logrus.Fatalf("Failed to create HTTP server: %v", err)
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			logrus.Fatalf("%v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
