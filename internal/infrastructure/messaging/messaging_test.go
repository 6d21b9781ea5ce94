// internal/infrastructure/messaging/messaging_test.go
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/segmentio/kafka-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestPublishOrderPlaced(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, timeout: time.Second}

	ev := &order.PlacedEvent{OrderID: "ord_1", UserID: "u1", Total: 648}
	require.NoError(t, p.PublishOrderPlaced(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("u1"), w.msgs[0].Key)
	assert.Equal(t, EventOrderPlaced, string(w.msgs[0].Headers[0].Value))

	var decoded order.PlacedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "ord_1", decoded.OrderID)

	w.err = errors.New("leader not available")
	assert.Error(t, p.PublishOrderPlaced(context.Background(), ev))
}

func TestConsumerHandlesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := json.Marshal(order.PlacedEvent{OrderID: "ord_1"})
	require.NoError(t, err)

	reader := &fakeReader{
		queue: []kafka.Message{
			{Offset: 1, Value: []byte("{not json")},
			{Offset: 2, Value: payload},
		},
		cancel: cancel,
	}

	var handled []string
	logger, _ := logtest.NewNullLogger()
	c := &Consumer{
		reader: reader,
		handler: func(_ context.Context, ev *order.PlacedEvent) error {
			handled = append(handled, ev.OrderID)
			return nil
		},
		backoff: time.Millisecond,
		logger:  logger,
	}
	c.Run(ctx)

	assert.Equal(t, []string{"ord_1"}, handled)
	require.Len(t, reader.committed, 2)
	assert.Equal(t, int64(2), reader.committed[1].Offset)
}

func TestConsumerRetriesThenCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := json.Marshal(order.PlacedEvent{OrderID: "ord_1"})
	require.NoError(t, err)
	reader := &fakeReader{queue: []kafka.Message{{Offset: 7, Value: payload}}, cancel: cancel}

	attempts := 0
	logger, _ := logtest.NewNullLogger()
	c := &Consumer{
		reader: reader,
		handler: func(context.Context, *order.PlacedEvent) error {
			attempts++
			return errors.New("smtp down")
		},
		backoff: time.Millisecond,
		logger:  logger,
	}
	c.Run(ctx)

	assert.Equal(t, maxHandleAttempts, attempts)
	assert.Len(t, reader.committed, 1)
}
