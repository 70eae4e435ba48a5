package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/token"
)

// RegisterRoutes mounts the auth endpoints on the given API group.
// credentialLimiter is the tighter per-IP limiter applied to the
// credential-guessing surface (login, register, refresh).
func RegisterRoutes(g *echo.Group, h *Handler, issuer *token.Issuer, credentialLimiter echo.MiddlewareFunc) {
	auth := g.Group("/auth")

	auth.POST("/register/student", h.RegisterStudent, credentialLimiter)
	auth.POST("/register/admin", h.RegisterAdmin, credentialLimiter)
	auth.POST("/login", h.Login, credentialLimiter)
	auth.POST("/refresh-token", h.Refresh, credentialLimiter)

	auth.GET("/google-login", h.GoogleLogin)
	auth.GET("/google-callback", h.GoogleCallback)
	auth.POST("/google", h.GoogleExchange, credentialLimiter)
	auth.POST("/external/:provider", h.ExternalLogin)

	authed := auth.Group("", RequireAuth(issuer))
	authed.POST("/logout", h.Logout)
	authed.POST("/logout-all", h.LogoutAll)
	authed.DELETE("/account", h.DeleteAccount)
}
