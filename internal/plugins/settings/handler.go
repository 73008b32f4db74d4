package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// Handler handles HTTP requests for user settings and provider presets.
type Handler struct {
	service SettingsService
}

// NewHandler creates a new settings handler.
func NewHandler(service SettingsService) *Handler {
	return &Handler{service: service}
}

// Get returns the caller's settings document (GET /api/settings).
func (h *Handler) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Save replaces the caller's settings document (POST /api/settings).
func (h *Handler) Save(c echo.Context) error {
	var doc Settings
	if err := c.Bind(&doc); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if err := h.service.Save(c.Request().Context(), auth.GetUserID(c), &doc); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Presets returns the built-in provider catalog (GET /api/presets).
func (h *Handler) Presets(c echo.Context) error {
	return c.JSON(http.StatusOK, Presets)
}
