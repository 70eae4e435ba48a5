package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/cache"
	"github.com/eduseek/eduseek/internal/middleware"
	"github.com/eduseek/eduseek/internal/plugins/auth"
	"github.com/eduseek/eduseek/internal/plugins/favorites"
	"github.com/eduseek/eduseek/internal/plugins/fraudreports"
	"github.com/eduseek/eduseek/internal/plugins/history"
	"github.com/eduseek/eduseek/internal/plugins/institutes"
	"github.com/eduseek/eduseek/internal/token"
)

// loginRequestsPerMinute is the tighter per-IP window on the
// credential-guessing surface (login, register, refresh).
const loginRequestsPerMinute = 10

// RegisterRoutes builds every repository, service, and handler and mounts
// all routes under /api/v1. This is the single place plugins are wired
// together; plugins never import each other's concrete types.
func (a *App) RegisterRoutes() error {
	issuer, err := token.NewIssuer(
		a.Config.Auth.JWTSecret,
		a.Config.Auth.Issuer,
		a.Config.Auth.Audience,
		a.Config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	userCache := cache.New(a.Redis)

	// Repositories.
	userRepo := auth.NewUserRepository(a.DB)
	sessionRepo := auth.NewSessionRepository(a.DB)
	instituteRepo := institutes.NewInstituteRepository(a.DB)
	favoriteRepo := favorites.NewFavoriteRepository(a.DB)
	historyRepo := history.NewHistoryRepository(a.DB)
	reportRepo := fraudreports.NewReportRepository(a.DB)

	// Services. History doubles as the institutes plugin's search recorder.
	authService := auth.NewAuthService(userRepo, sessionRepo, issuer,
		a.Config.Auth.RefreshTokenTTL, a.Config.Auth.MaxLoginFailures, a.Config.Auth.LockoutDuration)
	googleService := auth.NewGoogleService(userRepo, sessionRepo, issuer,
		a.Redis, a.Config.Google, a.Config.Auth.RefreshTokenTTL)
	historyService := history.NewHistoryService(historyRepo, userCache, a.Config.Cache.HistoryTTL)
	instituteService := institutes.NewInstituteService(instituteRepo, historyService)
	favoriteService := favorites.NewFavoriteService(favoriteRepo, instituteRepo,
		userCache, a.Config.Cache.FavoritesTTL)
	reportService := fraudreports.NewReportService(reportRepo, instituteRepo,
		a.Config.Quota.FraudReportsPerDay)

	// Rate limiters. The API limiter keys on the authenticated principal,
	// falling back to client IP for anonymous requests; the credential
	// limiter is always per-IP since its callers are unauthenticated.
	apiLimiter := middleware.RateLimit(a.Config.Quota.APIRequestsPerMinute, time.Minute,
		func(c echo.Context) string { return auth.GetUserID(c) })
	credentialLimiter := middleware.RateLimit(loginRequestsPerMinute, time.Minute, nil)

	a.Echo.GET("/healthz", a.healthz)

	api := a.Echo.Group("/api/v1")
	auth.RegisterRoutes(api, auth.NewHandler(authService, googleService), issuer, credentialLimiter)
	institutes.RegisterRoutes(api, institutes.NewHandler(instituteService), issuer)
	favorites.RegisterRoutes(api, favorites.NewHandler(favoriteService), issuer)
	history.RegisterRoutes(api, history.NewHandler(historyService), issuer)
	fraudreports.RegisterRoutes(api, fraudreports.NewHandler(reportService), issuer, apiLimiter)

	return nil
}

// healthz reports liveness plus the state of both backing stores.
func (a *App) healthz(c echo.Context) error {
	ctx := c.Request().Context()

	if err := a.DB.PingContext(ctx); err != nil {
		return middleware.JSONError(c, http.StatusServiceUnavailable, "database unreachable")
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		return middleware.JSONError(c, http.StatusServiceUnavailable, "redis unreachable")
	}
	return middleware.JSON(c, http.StatusOK, "ok", nil)
}
