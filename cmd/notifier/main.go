// cmd/notifier/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lizasatasiya/Zelie-web/internal/app"
	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/messaging"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/email"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/logger"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// The notifier consumes order placed events and sends confirmation emails.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	if !cfg.KafkaEnabled() {
		log.Fatal("KAFKA_BROKERS is required for the notifier")
	}

	m := metrics.NewBusiness(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)
	sender := email.NewEmailService(cfg, log)
	consumer := messaging.NewConsumer(cfg, app.ConfirmationHandler(sender, m, log), log)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
		defer metricsServer.Close()
	}

	log.WithFields(logrus.Fields{
		"topic":    cfg.Kafka.OrderTopic,
		"group_id": cfg.Kafka.GroupID,
		"provider": cfg.Email.Provider,
	}).Info("Order notifier started")

	consumer.Run(ctx)

	log.Info("Order notifier stopped")
}
