package institutes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/middleware"
	"github.com/eduseek/eduseek/internal/plugins/auth"
)

// Handler translates HTTP requests into catalog service calls.
type Handler struct {
	service InstituteService
}

// NewHandler creates the institutes HTTP handler.
func NewHandler(service InstituteService) *Handler {
	return &Handler{service: service}
}

// Search handles GET /institutes?q=&city=&page=. The route is public; an
// authenticated caller additionally gets the query recorded in their
// search history.
func (h *Handler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	input := SearchQuery{
		Query: c.QueryParam("q"),
		City:  c.QueryParam("city"),
		Page:  page,
	}

	result, err := h.service.Search(c.Request().Context(), input, auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "institutes retrieved", result)
}

// Get handles GET /institutes/:id.
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NewValidation("institute id must be numeric")
	}

	inst, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, "institute retrieved", inst)
}
