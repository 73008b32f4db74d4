package settings

import (
	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the settings routes. The preset catalog is
// public; the settings document requires auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.GET("/api/presets", h.Presets)

	authed := e.Group("", auth.RequireAuth(authService))
	authed.GET("/api/settings", h.Get)
	authed.POST("/api/settings", h.Save)
}
