package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/middleware"
)

// Handler translates HTTP requests into service calls. It holds no
// business logic: binding, session metadata extraction, and envelope
// shaping only.
type Handler struct {
	service AuthService
	google  GoogleService
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service AuthService, google GoogleService) *Handler {
	return &Handler{service: service, google: google}
}

// sessionMetaFrom extracts device metadata stamped on new sessions.
func sessionMetaFrom(c echo.Context) SessionMeta {
	return SessionMeta{
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	}
}

// RegisterStudent handles POST /auth/register/student.
func (h *Handler) RegisterStudent(c echo.Context) error {
	var req RegisterStudentRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	result, err := h.service.RegisterStudent(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusCreated, "account created", result)
}

// RegisterAdmin handles POST /auth/register/admin.
func (h *Handler) RegisterAdmin(c echo.Context) error {
	var req RegisterAdminRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	result, err := h.service.RegisterAdmin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusCreated, "account created", result)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	result, err := h.service.Login(c.Request().Context(), req, sessionMetaFrom(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "login successful", result)
}

// Refresh handles POST /auth/refresh. Both tokens travel in the body; the
// access token may be expired but must be authentic.
func (h *Handler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		return apperror.NewValidation("request body is invalid",
			"access_token and refresh_token are required")
	}

	result, err := h.service.Refresh(c.Request().Context(), req.AccessToken, req.RefreshToken, sessionMetaFrom(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "token pair rotated", result)
}

// Logout handles POST /auth/logout. Revoking an already-dead token is not
// an error: logout is idempotent from the client's perspective.
func (h *Handler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}
	if req.RefreshToken == "" {
		return apperror.NewValidation("request body is invalid", "refresh_token is required")
	}

	if _, err := h.service.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "logged out", nil)
}

// LogoutAll handles POST /auth/logout-all. The target user comes from the
// verified token, never from the request.
func (h *Handler) LogoutAll(c echo.Context) error {
	if _, err := h.service.LogoutAll(c.Request().Context(), GetUserID(c)); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "logged out everywhere", nil)
}

// GoogleLogin handles GET /auth/google: redirects the browser to Google's
// authorization URL.
func (h *Handler) GoogleLogin(c echo.Context) error {
	if !h.google.Enabled() {
		return apperror.NewNotImplemented("google login is not configured")
	}

	url, err := h.google.BeginLogin(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles GET /auth/google-callback, the provider redirect
// target. Code and state arrive as query parameters.
func (h *Handler) GoogleCallback(c echo.Context) error {
	if !h.google.Enabled() {
		return apperror.NewNotImplemented("google login is not configured")
	}

	result, err := h.google.CompleteLogin(c.Request().Context(),
		c.QueryParam("code"), c.QueryParam("state"), sessionMetaFrom(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "login successful", result)
}

// GoogleExchange handles POST /auth/google for clients that run the
// authorization step themselves and post code and state as JSON.
func (h *Handler) GoogleExchange(c echo.Context) error {
	if !h.google.Enabled() {
		return apperror.NewNotImplemented("google login is not configured")
	}

	var req GoogleCallbackRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	result, err := h.google.CompleteLogin(c.Request().Context(), req.Code, req.State, sessionMetaFrom(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "login successful", result)
}

// ExternalLogin handles POST /auth/external/:provider, the placeholder for
// providers beyond Google.
func (h *Handler) ExternalLogin(c echo.Context) error {
	_, err := h.service.ExternalLogin(c.Request().Context(), c.Param("provider"))
	return err
}

// DeleteAccount handles DELETE /auth/account. The account removed is the
// authenticated one; there is no way to name another user's id.
func (h *Handler) DeleteAccount(c echo.Context) error {
	if err := h.service.DeleteAccount(c.Request().Context(), GetUserID(c)); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "account deleted", nil)
}
