package translate

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/middleware"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the translation route. Rate limited because
// every call fans out to a third-party API.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.POST("/api/translate", h.Translate,
		auth.RequireAuth(authService),
		middleware.RateLimit(30, time.Minute),
	)
}
