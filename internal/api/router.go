package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vitacare/clinic-ops/internal/api/handler"
	"github.com/vitacare/clinic-ops/internal/api/middleware"
	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/service"
	mongodb "github.com/vitacare/clinic-ops/internal/infrastructure/db/mongo"
	redisdb "github.com/vitacare/clinic-ops/internal/infrastructure/db/redis"
)

// RouterConfig carries the settings the router needs beyond its clients.
type RouterConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the auth service, which the caller also needs for
// bootstrap seeding.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) (*echo.Echo, *service.AuthService) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	tokenStore := redisdb.NewRefreshTokenStore(rdb)
	authService := service.NewAuthService(userRepo, tokenStore, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authHandler := handler.NewAuthHandler(authService)
	dashHandler := handler.NewDashboardHandler(userRepo)
	authMW := middleware.Auth(authService)

	// --- Session lifecycle (the contract the dashboard client consumes) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me)

	// --- Role-gated dashboard surface ---
	nav := e.Group("/nav", authMW, middleware.Guard())
	nav.GET("", dashHandler.Nav)

	admin := e.Group("/admin", authMW, middleware.Guard(domain.RoleAdmin))
	admin.GET("/users", dashHandler.ListUsers)

	// --- Probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readyHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readyHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e, authService
}
