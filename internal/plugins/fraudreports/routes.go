package fraudreports

import (
	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/plugins/auth"
	"github.com/eduseek/eduseek/internal/token"
)

// RegisterRoutes mounts the fraud report endpoints. apiLimiter is the
// shared per-principal request limiter for the report group.
func RegisterRoutes(g *echo.Group, h *Handler, issuer *token.Issuer, apiLimiter echo.MiddlewareFunc) {
	reports := g.Group("/fraud-reports", auth.RequireAuth(issuer), apiLimiter)
	reports.POST("", h.Submit)
	reports.GET("", h.ListOwn)

	admin := g.Group("/admin/fraud-reports", auth.RequireAuth(issuer), auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.ListAll)
}
