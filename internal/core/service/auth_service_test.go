package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Username
	}
	r.users[copy.Username] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type stubTokenStore struct {
	tokens map[string]string
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]string)}
}

func (s *stubTokenStore) Save(_ context.Context, username, token string, _ time.Duration) error {
	s.tokens[username] = token
	return nil
}

func (s *stubTokenStore) Get(_ context.Context, username string) (string, error) {
	t, ok := s.tokens[username]
	if !ok {
		return "", errors.New("no token on record")
	}
	return t, nil
}

func (s *stubTokenStore) Delete(_ context.Context, username string) error {
	delete(s.tokens, username)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *stubUserRepo, *stubTokenStore) {
	t.Helper()
	repo := newStubUserRepo()
	tokens := newStubTokenStore()
	svc := NewAuthService(repo, tokens, "test-secret", time.Hour, 24*time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	repo.users["ana"] = &domain.User{
		ID:           "u1",
		Username:     "ana",
		Name:         "Ana Reyes",
		RoleCode:     domain.RoleCodeReceptionist,
		PasswordHash: string(hash),
	}
	return svc, repo, tokens
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, tokens := newTestService(t)

	user, access, refresh, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Username != "ana" || user.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected both tokens")
	}
	if tokens.tokens["ana"] != refresh {
		t.Fatalf("refresh token not recorded")
	}

	claims, err := svc.ParseAccessClaims(access)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Username != "ana" || claims.RoleCode != domain.RoleCodeReceptionist {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_GenericRejection(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Wrong password and unknown user must be indistinguishable.
	_, _, _, errWrong := svc.Login(context.Background(), "ana", "nope")
	_, _, _, errUnknown := svc.Login(context.Background(), "ghost", "nope")

	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrong)
	}
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("error messages leak account existence: %q vs %q", errWrong, errUnknown)
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	svc, _, tokens := newTestService(t)
	_, _, refresh1, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access2, refresh2, err := svc.Refresh(context.Background(), refresh1)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh1 {
		t.Fatalf("rotation did not replace the refresh token")
	}
	if tokens.tokens["ana"] != refresh2 {
		t.Fatalf("stored token not rotated")
	}

	// The spent token must be unusable now.
	if _, _, err := svc.Refresh(context.Background(), refresh1); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("replayed token: expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, access, _, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), access); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestAuthService_Refresh_CarriesFreshRole(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_, _, refresh, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	repo.users["ana"].RoleCode = domain.RoleCodeAdmin

	access, _, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	claims, err := svc.ParseAccessClaims(access)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if claims.RoleCode != domain.RoleCodeAdmin {
		t.Fatalf("new access token carries stale role code %d", claims.RoleCode)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, tokens := newTestService(t)
	_, _, refresh, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), refresh); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := tokens.tokens["ana"]; ok {
		t.Fatalf("refresh token not revoked")
	}

	// Logout with garbage must not error.
	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("logout with bad token: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("revoked token still refreshes: %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_, access, _, err := svc.Login(context.Background(), "ana", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), access)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if user.Username != "ana" || user.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// Server-side role change is visible on the next lookup.
	repo.users["ana"].RoleCode = domain.RoleCodeAdmin
	user, err = svc.CurrentUser(context.Background(), access)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if user.Role() != domain.RoleAdmin {
		t.Fatalf("role change not visible: %q", user.Role())
	}

	if _, err := svc.CurrentUser(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "", "pw", "X", domain.RoleCodeAdmin); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty username: got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pw", "Bob", 99); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown role code: got %v", err)
	}
	if _, err := svc.Register(context.Background(), "ana", "pw", "Ana", domain.RoleCodeAdmin); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("duplicate username: got %v", err)
	}
}

func TestAuthService_Bootstrap(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newStubTokenStore(), "test-secret", time.Hour, 24*time.Hour)

	if err := svc.Bootstrap(context.Background(), "root", "changeme"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	u, err := repo.FindByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	if u.Role() != domain.RoleAdmin {
		t.Fatalf("seeded user has role %q", u.Role())
	}

	// Second bootstrap is a no-op on a populated store.
	if err := svc.Bootstrap(context.Background(), "other", "pw"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "other"); err == nil {
		t.Fatalf("bootstrap seeded into a populated store")
	}
}
