package favorites

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/middleware"
	"github.com/eduseek/eduseek/internal/plugins/auth"
)

// Handler translates HTTP requests into favorite service calls. The
// acting user always comes from the verified token claims.
type Handler struct {
	service FavoriteService
}

// NewHandler creates the favorites HTTP handler.
func NewHandler(service FavoriteService) *Handler {
	return &Handler{service: service}
}

// List handles GET /favorites.
func (h *Handler) List(c echo.Context) error {
	favorites, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "favorites retrieved", favorites)
}

// Add handles POST /favorites.
func (h *Handler) Add(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	if err := h.service.Add(c.Request().Context(), auth.GetUserID(c), req.InstituteID); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusCreated, "favorite added", nil)
}

// Remove handles DELETE /favorites/:instituteID.
func (h *Handler) Remove(c echo.Context) error {
	instituteID, err := strconv.ParseInt(c.Param("instituteID"), 10, 64)
	if err != nil {
		return apperror.NewValidation("institute id must be numeric")
	}

	if err := h.service.Remove(c.Request().Context(), auth.GetUserID(c), instituteID); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "favorite removed", nil)
}
