package llm

import (
	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the chat streaming route.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.POST("/api/chat/stream", h.Stream, auth.RequireAuth(authService))
}
