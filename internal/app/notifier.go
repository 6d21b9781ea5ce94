// internal/app/notifier.go
package app

import (
	"context"
	"errors"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/messaging"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/email"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// ConfirmationSender sends the order confirmation email
type ConfirmationSender interface {
	SendOrderConfirmationEmail(ctx context.Context, ev *order.PlacedEvent) error
}

// ConfirmationHandler turns order placed events into confirmation emails.
// Orders without an email address are skipped rather than retried.
func ConfirmationHandler(sender ConfirmationSender, m *metrics.Business, logger logrus.FieldLogger) messaging.OrderPlacedHandler {
	return func(ctx context.Context, ev *order.PlacedEvent) error {
		log := logger.WithFields(logrus.Fields{
			"order_id": ev.OrderID,
			"user_id":  ev.UserID,
		})

		err := sender.SendOrderConfirmationEmail(ctx, ev)
		switch {
		case err == nil:
			m.EmailsSent.WithLabelValues("sent").Inc()
			log.Info("order confirmation sent")
			return nil
		case errors.Is(err, email.ErrNoRecipient):
			m.EmailsSent.WithLabelValues("skipped").Inc()
			log.Warn("order has no email address, confirmation skipped")
			return nil
		default:
			m.EmailsSent.WithLabelValues("failed").Inc()
			return err
		}
	}
}
