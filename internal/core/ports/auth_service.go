package ports

import (
	"context"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// AuthService is the server-side contract behind the auth endpoints.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}
