package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitacare/clinic-ops/internal/api/middleware"
	"github.com/vitacare/clinic-ops/internal/core/nav"
	"github.com/vitacare/clinic-ops/internal/core/ports"
)

// DashboardHandler serves the navigation tree and the admin user listing.
type DashboardHandler struct {
	users ports.UserRepository
}

func NewDashboardHandler(users ports.UserRepository) *DashboardHandler {
	return &DashboardHandler{users: users}
}

type navResponse struct {
	Entries []nav.Entry `json:"entries"`
}

// Nav returns the navigation entries visible to the caller's role. This is
// presentational: every route listed here is still enforced by the guard.
func (h *DashboardHandler) Nav(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	return c.JSON(http.StatusOK, navResponse{Entries: nav.Filter(sess.Role())})
}

// ListUsers returns all user accounts. Admin only, enforced by the guard
// middleware on the route.
func (h *DashboardHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}
