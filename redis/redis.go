package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const revokedPrefix = "gosshub:revoked:"

var ErrUnavailable = errors.New("redis not available")

// NewClient connects to addr. It returns nil and an error when the server
// does not answer, and callers carry on without Redis.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		log.Warn().Err(err).Str("addr", addr).Msg("Redis not available. Running without Redis.")
		return nil, ErrUnavailable
	}

	log.Info().Str("addr", addr).Msg("Redis connected successfully.")
	return client, nil
}

// TokenStore keeps revoked token ids until the tokens would have expired
// anyway.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if s.client == nil {
		return ErrUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports false when no Redis is configured.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
