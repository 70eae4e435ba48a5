package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/token"
)

// claimsContextKey is the echo context key holding the verified claims.
const claimsContextKey = "auth_claims"

// RequireAuth verifies the Authorization bearer token and stores the
// verified claims on the request context. Every downstream handler reads
// the acting user through GetUserID -- never from a path or body parameter.
func RequireAuth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return apperror.NewUnauthorized("missing bearer token")
			}

			claims, err := issuer.Parse(raw)
			if err != nil {
				return apperror.NewUnauthorized("invalid or expired token")
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth verifies a bearer token when one is present but lets
// anonymous requests through. Used on public routes that personalize
// behavior for authenticated callers (institute search recording history).
// A present-but-invalid token is still rejected rather than silently
// downgraded to anonymous.
func OptionalAuth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return apperror.NewUnauthorized("malformed authorization header")
			}

			claims, err := issuer.Parse(raw)
			if err != nil {
				return apperror.NewUnauthorized("invalid or expired token")
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// RequireRole allows the request through only when the verified role claim
// matches. Must run after RequireAuth.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return apperror.NewUnauthorized("missing bearer token")
			}
			if claims.Role != role {
				return apperror.NewForbidden("insufficient role")
			}
			return next(c)
		}
	}
}

// GetClaims returns the verified claims set by RequireAuth.
func GetClaims(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*token.Claims)
	return claims, ok
}

// GetUserID returns the authenticated user's id, or "" when the request is
// unauthenticated. Routes behind RequireAuth can rely on it being set.
func GetUserID(c echo.Context) string {
	claims, ok := GetClaims(c)
	if !ok {
		return ""
	}
	return claims.Subject
}

// GetRole returns the authenticated user's role claim, or "".
func GetRole(c echo.Context) string {
	claims, ok := GetClaims(c)
	if !ok {
		return ""
	}
	return claims.Role
}
