package history

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/middleware"
	"github.com/eduseek/eduseek/internal/plugins/auth"
)

// Handler translates HTTP requests into history service calls.
type Handler struct {
	service HistoryService
}

// NewHandler creates the history HTTP handler.
func NewHandler(service HistoryService) *Handler {
	return &Handler{service: service}
}

// List handles GET /history.
func (h *Handler) List(c echo.Context) error {
	entries, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "search history retrieved", entries)
}

// DeleteOne handles DELETE /history/:id.
func (h *Handler) DeleteOne(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NewValidation("history entry id must be numeric")
	}

	if err := h.service.DeleteOne(c.Request().Context(), auth.GetUserID(c), id); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "history entry deleted", nil)
}

// DeleteAll handles DELETE /history.
func (h *Handler) DeleteAll(c echo.Context) error {
	if err := h.service.DeleteAll(c.Request().Context(), auth.GetUserID(c)); err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "search history cleared", nil)
}
