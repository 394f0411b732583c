package ports

import (
	"context"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// CredentialStore is durable key/value persistence for the credential
// record. The session manager is its only writer. Save persists the full
// triple as one logical write; Clear removes all of it. Load returns
// (nil, nil) when no record exists.
type CredentialStore interface {
	Load(ctx context.Context) (*domain.Credentials, error)
	Save(ctx context.Context, creds *domain.Credentials) error
	Clear(ctx context.Context) error
}
