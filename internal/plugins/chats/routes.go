package chats

import (
	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the chat routes. All of them require auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	authed := e.Group("/api/chats", auth.RequireAuth(authService))
	authed.GET("", h.List)
	authed.POST("", h.Create)
	authed.GET("/:id", h.Get)
	authed.PATCH("/:id/messages", h.UpdateMessages)
	authed.DELETE("/:id", h.Delete)
}
