package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the admin routes. Everything here requires the
// admin role.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	g := e.Group("/api/admin", auth.RequireAuth(authService), auth.RequireAdmin(authService))
	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id/role", h.SetRole)
	g.POST("/restart", h.Restart)
}
