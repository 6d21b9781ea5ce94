// internal/domain/notification/service.go
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind classifies a popup for styling on the client
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultTTL is how long a popup stays visible when no duration is given
const DefaultTTL = 3 * time.Second

// Message is the single transient popup held for a browser session
type Message struct {
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service stores one popup per session. Showing a new message replaces the
// previous one and expiry is left to Redis.
type Service struct {
	redisClient *redis.Client
	defaultTTL  time.Duration
	now         func() time.Time
}

// NewService creates a new notification service
func NewService(redisClient *redis.Client, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Service{
		redisClient: redisClient,
		defaultTTL:  defaultTTL,
		now:         time.Now,
	}
}

func popupKey(sessionID string) string {
	return fmt.Sprintf("popup:session:%s", sessionID)
}

// Show replaces the session's popup. A ttl of zero or less uses the default.
func (s *Service) Show(ctx context.Context, sessionID string, kind Kind, text string, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	msg := Message{
		Text:      text,
		Kind:      kind,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal popup: %w", err)
	}

	if err := s.redisClient.Set(ctx, popupKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save popup: %w", err)
	}
	return nil
}

// Current returns the visible popup, or nil when none is showing
func (s *Service) Current(ctx context.Context, sessionID string) (*Message, error) {
	data, err := s.redisClient.Get(ctx, popupKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load popup: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode popup: %w", err)
	}
	return &msg, nil
}

// Dismiss clears the session's popup before it expires
func (s *Service) Dismiss(ctx context.Context, sessionID string) error {
	return s.redisClient.Del(ctx, popupKey(sessionID)).Err()
}
