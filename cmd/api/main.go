// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/app"
	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, log)
	cancelStart()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}

	server, err := http.NewServer(application)
	if err != nil {
		log.WithError(err).Fatal("Failed to create HTTP server")
	}

	log.Info("All systems operational")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down gracefully")
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	if err := application.Close(ctx); err != nil {
		log.WithError(err).Error("Failed to close connections")
	}

	log.Info("Server shutdown completed")
}
