package search

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/middleware"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the search route.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.GET("/api/search", h.Search,
		auth.RequireAuth(authService),
		middleware.RateLimit(30, time.Minute),
	)
}
