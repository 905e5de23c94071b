package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/REGENCY-14/Finalyear/internal/repository"
)

const revokedKeyPrefix = "revoked_token:"

// RevocationStore is a Redis-backed token denylist. Entries expire with the
// token they shadow, so the set stays bounded by the token lifetime.
type RevocationStore struct {
	client *redis.Client
}

func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRevocationStore(client *redis.Client) repository.RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already past expiry; nothing to shadow.
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}
