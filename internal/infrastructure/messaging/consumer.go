// internal/infrastructure/messaging/consumer.go
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const maxHandleAttempts = 3

// OrderPlacedHandler processes one order placed event
type OrderPlacedHandler func(ctx context.Context, event *order.PlacedEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads order events as part of a consumer group
type Consumer struct {
	reader  messageReader
	handler OrderPlacedHandler
	backoff time.Duration
	logger  logrus.FieldLogger
}

// NewConsumer creates a consumer for the configured order topic and group
func NewConsumer(cfg *config.Config, handler OrderPlacedHandler, logger logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.OrderTopic,
		GroupID:  cfg.Kafka.GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader:  reader,
		handler: handler,
		backoff: time.Second,
		logger:  logger.WithField("component", "order_consumer"),
	}
}

// Run processes messages until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

// Close closes the reader
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.WithError(err).Error("error closing kafka reader")
	}
}

// processMessage handles one message. It is committed once handled, or
// once it is known it can never be handled.
func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		c.logger.WithError(err).Error("error reading message")
		c.sleep(ctx)
		return
	}

	log := c.logger.WithFields(logrus.Fields{
		"partition": m.Partition,
		"offset":    m.Offset,
	})

	var event order.PlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.WithError(err).Error("error parsing message, skipping")
		c.commit(ctx, m, log)
		return
	}
	log = log.WithField("order_id", event.OrderID)

	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		err = c.handler(ctx, &event)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("failed to handle order event")
		if attempt < maxHandleAttempts && !c.sleep(ctx) {
			return
		}
	}
	if err != nil {
		log.WithError(err).Error("giving up on order event")
	}

	c.commit(ctx, m, log)
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message, log logrus.FieldLogger) {
	if err := c.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("failed to commit message")
	}
}

// sleep waits for the backoff and reports false if ctx ended first
func (c *Consumer) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
