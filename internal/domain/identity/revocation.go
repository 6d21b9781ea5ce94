// internal/domain/identity/revocation.go
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker remembers signed-out token ids until they would expire anyway
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevoker keeps revoked token ids in Redis
type RedisRevoker struct {
	redisClient *redis.Client
}

// NewRedisRevoker creates a new token revoker
func NewRedisRevoker(redisClient *redis.Client) *RedisRevoker {
	return &RedisRevoker{redisClient: redisClient}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

// Revoke marks a token id as signed out
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.redisClient.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether a token id was signed out
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
