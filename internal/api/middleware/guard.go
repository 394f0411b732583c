package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/vitacare/clinic-ops/internal/api/metrics"
	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/guard"
)

// Guard adapts guard.Decide for echo routes. It is the enforcement point:
// the navigation filter only decides what is offered, this decides what is
// served. RedirectLogin maps to 401 on an API surface; the dashboard client
// turns that into its login redirect.
func Guard(required ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := guard.Decide(SessionFrom(c), required...)
			metrics.GuardDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case guard.Allow:
				return next(c)
			case guard.Forbidden:
				return domain.ErrForbidden
			default:
				return domain.ErrUnauthorized
			}
		}
	}
}
