// Package authapi implements the client side of the auth service HTTP
// contract. It is the translation boundary for failures: every transport or
// HTTP error leaves this package as one of the domain sentinel errors.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to the auth service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for the given base URL. A default timeout is
// applied when none is provided; timeouts surface as network failures.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Login exchanges credentials for the full credential triple. A 401 maps to
// the generic ErrInvalidCredentials regardless of why the server refused.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Credentials, error) {
	var resp loginResponse
	err := c.post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, "", &resp)
	if err != nil {
		if code, ok := statusOf(err); ok && code == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	creds := &domain.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: incomplete login response", domain.ErrNetworkFailure)
	}
	return creds, nil
}

// Refresh exchanges the refresh token for a new pair. A 401 means the token
// was rejected: the session is over.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	var resp refreshResponse
	err := c.post(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, "", &resp)
	if err != nil {
		if code, ok := statusOf(err); ok && code == http.StatusUnauthorized {
			return "", "", domain.ErrSessionExpired
		}
		return "", "", err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return "", "", fmt.Errorf("%w: incomplete refresh response", domain.ErrNetworkFailure)
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

// Logout revokes the refresh token server-side. Callers treat any error as
// non-fatal; local invalidation has already happened.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, "/auth/logout", refreshRequest{RefreshToken: refreshToken}, "", nil)
}

// CurrentUser fetches the identity behind an access token. A 401 means the
// access token was rejected mid-session.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp userResponse
	if err := c.do(req, &resp); err != nil {
		if code, ok := statusOf(err); ok && code == http.StatusUnauthorized {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: empty user response", domain.ErrNetworkFailure)
	}
	return resp.User, nil
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("auth service rejected request")
		return &statusError{code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrNetworkFailure, err)
	}
	return nil
}

// statusError carries an HTTP status through the internal call path so each
// endpoint can map it to its own domain error. It never escapes the package:
// unmapped statuses are folded into ErrNetworkFailure by Unwrap.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("auth service returned status %d", e.code)
}

func (e *statusError) Unwrap() error {
	return domain.ErrNetworkFailure
}

func statusOf(err error) (int, bool) {
	se, ok := err.(*statusError)
	if !ok {
		return 0, false
	}
	return se.code, true
}
