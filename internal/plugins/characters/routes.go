package characters

import (
	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the character routes. Listing is open to
// anonymous callers (public characters only); everything mutating
// requires auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.GET("/api/characters", h.List, auth.OptionalAuth(authService))

	authed := e.Group("", auth.RequireAuth(authService))
	authed.POST("/api/characters", h.Create)
	authed.PATCH("/api/characters/:id", h.Update)
	authed.DELETE("/api/characters/:id", h.Delete)
	authed.POST("/api/characters/import/png", h.ImportPNG)
	authed.POST("/api/characters/import/json", h.ImportJSON)
}
