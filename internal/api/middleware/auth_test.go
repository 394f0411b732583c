package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/service"
)

type stubParser struct {
	claims map[string]*service.Claims
}

func (p *stubParser) ParseAccessClaims(token string) (*service.Claims, error) {
	if c, ok := p.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func validParser() *stubParser {
	return &stubParser{claims: map[string]*service.Claims{
		"good-token": {Username: "ana", RoleCode: domain.RoleCodeLabTechnician},
	}}
}

func newAuthContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuth_InjectsSession(t *testing.T) {
	c, _ := newAuthContext("Bearer good-token")

	var seen domain.Session
	handler := Auth(validParser())(func(c echo.Context) error {
		seen = SessionFrom(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !seen.IsAuthenticated() {
		t.Fatalf("session not authenticated: %+v", seen)
	}
	if seen.Role() != domain.RoleLabTechnician {
		t.Fatalf("unexpected role: %q", seen.Role())
	}
	if seen.AccessToken != "good-token" {
		t.Fatalf("access token not carried: %q", seen.AccessToken)
	}
}

func TestAuth_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic Zm9vOmJhcg=="},
		{"malformed", "Bearer"},
		{"unknown token", "Bearer bad-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newAuthContext(tc.header)
			handler := Auth(validParser())(func(c echo.Context) error {
				t.Fatalf("next handler must not run")
				return nil
			})

			err := handler(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %v", err)
			}
		})
	}
}

func TestSessionFrom_WithoutAuth(t *testing.T) {
	c, _ := newAuthContext("")
	if sess := SessionFrom(c); sess.IsAuthenticated() {
		t.Fatalf("zero session must not be authenticated")
	}
}
