package fraudreports

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/middleware"
	"github.com/eduseek/eduseek/internal/plugins/auth"
)

// Handler translates HTTP requests into report service calls.
type Handler struct {
	service ReportService
}

// NewHandler creates the fraud reports HTTP handler.
func NewHandler(service ReportService) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /fraud-reports.
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("request body is invalid")
	}

	report, err := h.service.Submit(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusCreated, "fraud report submitted", report)
}

// ListOwn handles GET /fraud-reports.
func (h *Handler) ListOwn(c echo.Context) error {
	reports, err := h.service.ListOwn(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "fraud reports retrieved", reports)
}

// ListAll handles GET /admin/fraud-reports.
func (h *Handler) ListAll(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := h.service.ListAll(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "fraud reports retrieved", result)
}
