package institutes

import (
	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/plugins/auth"
	"github.com/eduseek/eduseek/internal/token"
)

// RegisterRoutes mounts the catalog endpoints. The routes are public but
// run behind OptionalAuth so authenticated searches can be attributed.
func RegisterRoutes(g *echo.Group, h *Handler, issuer *token.Issuer) {
	inst := g.Group("/institutes", auth.OptionalAuth(issuer))
	inst.GET("", h.Search)
	inst.GET("/:id", h.Get)
}
