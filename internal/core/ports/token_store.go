package ports

import (
	"context"
	"time"
)

// RefreshTokenStore holds the single currently-valid refresh token per user.
// Rotation works by comparing the presented token against the stored one and
// replacing it; an implementation must expire entries after their TTL.
type RefreshTokenStore interface {
	Save(ctx context.Context, username, token string, ttl time.Duration) error
	Get(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
}
