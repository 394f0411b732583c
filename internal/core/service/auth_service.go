package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token kinds. The role code travels in
// the access token so the API can gate requests without a user lookup.
type Claims struct {
	Username  string `json:"username"`
	RoleCode  int    `json:"role_code"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthService implements login, token refresh with rotation, logout, and
// identity lookup. Exactly one refresh token per user is valid at a time:
// every refresh replaces it, so a replayed old token is rejected.
type AuthService struct {
	repo       ports.UserRepository
	tokens     ports.RefreshTokenStore
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(repo ports.UserRepository, tokens ports.RefreshTokenStore, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies the password and issues a fresh token pair. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, string, error) {
	if username == "" || password == "" {
		return nil, "", "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", "", domain.ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", "", domain.ErrInvalidCredentials
	}

	access, refresh, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	user.PasswordHash = ""
	return user, access, refresh, nil
}

// Refresh rotates the token pair. The presented refresh token must be both
// a valid JWT and the one currently on record for its user; either check
// failing means the session is over.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", "", domain.ErrSessionExpired
	}

	stored, err := s.tokens.Get(ctx, claims.Username)
	if err != nil || stored != refreshToken {
		return "", "", domain.ErrSessionExpired
	}

	// Reload the user so the new access token carries the current role.
	user, err := s.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		return "", "", domain.ErrSessionExpired
	}

	return s.issuePair(ctx, user)
}

// Logout revokes the stored refresh token. Unknown or malformed tokens are
// not an error: the caller has already discarded its local session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil
	}
	return s.tokens.Delete(ctx, claims.Username)
}

// CurrentUser resolves an access token to the live user record, so role or
// profile changes made server-side reach clients without a re-login.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.parseToken(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user.PasswordHash = ""
	return user, nil
}

// Register creates a user account. Intended for administrative seeding and
// the admin user screen, not self-service signup.
func (s *AuthService) Register(ctx context.Context, username, password, name string, roleCode int) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if domain.RoleFromCode(roleCode) == domain.RoleNone {
		return nil, fmt.Errorf("%w: unknown role code %d", domain.ErrInvalidCredentials, roleCode)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Name:         name,
		RoleCode:     roleCode,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	created.PasswordHash = ""
	return created, nil
}

// Bootstrap seeds the initial administrator when the user store is empty.
func (s *AuthService) Bootstrap(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = s.Register(ctx, username, password, "Administrator", domain.RoleCodeAdmin)
	return err
}

// issuePair mints an access/refresh pair and records the refresh token as
// the user's single valid one.
func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (string, string, error) {
	access, err := s.signToken(user, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	if err := s.tokens.Save(ctx, user.Username, refresh, s.refreshTTL); err != nil {
		return "", "", fmt.Errorf("storing refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *AuthService) signToken(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:  user.Username,
		RoleCode:  user.RoleCode,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        fmt.Sprintf("%s-%d", tokenType, now.UnixNano()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

func (s *AuthService) parseToken(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.TokenType != wantType {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// ParseAccessClaims validates an access token and returns its claims. Used
// by the HTTP auth middleware; kept here so the signing and verification
// rules live in one place.
func (s *AuthService) ParseAccessClaims(tokenString string) (*Claims, error) {
	return s.parseToken(tokenString, tokenTypeAccess)
}
