package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// RefreshTokenStore keeps the single valid refresh token per user.
// Key format: refresh_token:<username>, expiring with the token itself so
// revocation needs no sweeper.
type RefreshTokenStore struct {
	client *redis.Client
}

func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

func (s *RefreshTokenStore) key(username string) string {
	return fmt.Sprintf("refresh_token:%s", username)
}

// Save records token as the user's only valid refresh token, replacing any
// previous one.
func (s *RefreshTokenStore) Save(ctx context.Context, username, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(username), token, ttl).Err(); err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	return nil
}

// Get returns the stored token, or ErrSessionExpired when none is on record.
func (s *RefreshTokenStore) Get(ctx context.Context, username string) (string, error) {
	token, err := s.client.Get(ctx, s.key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("loading refresh token: %w", err)
	}
	return token, nil
}

// Delete revokes the stored token. Deleting an absent token is not an error.
func (s *RefreshTokenStore) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}
