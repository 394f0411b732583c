package ports

import (
	"context"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// AuthAPI is the client-side view of the auth service. Implementations must
// resolve transport failures into the domain error taxonomy; callers never
// see raw HTTP or network errors.
type AuthAPI interface {
	// Login exchanges credentials for a full credential triple.
	Login(ctx context.Context, username, password string) (*domain.Credentials, error)

	// Refresh exchanges a refresh token for a new token pair. The server
	// rotates refresh tokens, so the presented token is spent either way.
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)

	// Logout revokes the refresh token server-side. Best-effort.
	Logout(ctx context.Context, refreshToken string) error

	// CurrentUser fetches the identity behind an access token.
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}
