package favorites

import (
	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/plugins/auth"
	"github.com/eduseek/eduseek/internal/token"
)

// RegisterRoutes mounts the favorites endpoints behind the bearer guard.
func RegisterRoutes(g *echo.Group, h *Handler, issuer *token.Issuer) {
	fav := g.Group("/favorites", auth.RequireAuth(issuer))
	fav.GET("", h.List)
	fav.POST("", h.Add)
	fav.DELETE("/:instituteID", h.Remove)
}
