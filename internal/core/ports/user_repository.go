package ports

import (
	"context"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// UserRepository defines the interface for user persistence on the auth
// service side.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
