package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/service"
)

// sessionKey is the echo context key holding the request's session snapshot.
const sessionKey = "clinic.session"

// ClaimsParser validates an access token and returns its claims.
type ClaimsParser interface {
	ParseAccessClaims(tokenString string) (*service.Claims, error)
}

// Auth validates the bearer access token and stores a session snapshot in
// the request context for the guard and handlers downstream.
func Auth(parser ClaimsParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := parser.ParseAccessClaims(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(sessionKey, domain.Session{
				User: &domain.User{
					Username: claims.Username,
					RoleCode: claims.RoleCode,
				},
				AccessToken: parts[1],
			})
			return next(c)
		}
	}
}

// SessionFrom returns the session snapshot stored by Auth. Without Auth in
// the chain it returns a zero session, which every guard check rejects.
func SessionFrom(c echo.Context) domain.Session {
	sess, _ := c.Get(sessionKey).(domain.Session)
	return sess
}
