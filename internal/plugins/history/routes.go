package history

import (
	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/plugins/auth"
	"github.com/eduseek/eduseek/internal/token"
)

// RegisterRoutes mounts the history endpoints behind the bearer guard.
func RegisterRoutes(g *echo.Group, h *Handler, issuer *token.Issuer) {
	hist := g.Group("/history", auth.RequireAuth(issuer))
	hist.GET("", h.List)
	hist.DELETE("", h.DeleteAll)
	hist.DELETE("/:id", h.DeleteOne)
}
