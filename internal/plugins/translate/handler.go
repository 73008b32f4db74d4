package translate

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
)

// Handler handles the translation endpoint.
type Handler struct {
	service TranslateService
}

// NewHandler creates a new translate handler.
func NewHandler(service TranslateService) *Handler {
	return &Handler{service: service}
}

// Translate converts text between languages (POST /api/translate).
func (h *Handler) Translate(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	resp, err := h.service.Translate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
