package discover

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/middleware"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// RegisterRoutes sets up the marketplace proxy routes. Auth keeps the
// proxy from being hammered anonymously; the rate limit bounds upstream
// traffic either way.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	g := e.Group("/api/chub", auth.RequireAuth(authService), middleware.RateLimit(60, time.Minute))
	g.GET("/search", h.Search)
	g.POST("/download", h.Download)
	g.GET("/avatar", h.Avatar)
}
