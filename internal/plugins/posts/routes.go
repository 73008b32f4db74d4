package posts

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/middleware"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the feed routes. Reading is public; publishing
// and deleting require auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.GET("/api/posts", h.List)

	authed := e.Group("/api/posts", auth.RequireAuth(authService))
	authed.POST("", h.Create, middleware.RateLimit(10, time.Minute))
	authed.DELETE("/:id", h.Delete)
}
