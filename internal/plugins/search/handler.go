package search

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles the global search endpoint.
type Handler struct {
	service SearchService
}

// NewHandler creates a new search handler.
func NewHandler(service SearchService) *Handler {
	return &Handler{service: service}
}

// Search runs a global search (GET /api/search?q=).
func (h *Handler) Search(c echo.Context) error {
	results, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}
