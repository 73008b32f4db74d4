package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/middleware"
)

// RegisterRoutes sets up the auth and profile routes. Register and login
// are rate-limited: a brute-forced password yields the field-encryption
// key along with the account, so credential endpoints get tighter limits
// than the rest of the API.
func RegisterRoutes(e *echo.Echo, h *Handler, service AuthService) {
	// Public routes.
	e.POST("/api/auth/register", h.Register, middleware.RateLimit(5, time.Minute))
	e.POST("/api/auth/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.GET("/api/users/:username", h.PublicProfile)

	// Authenticated routes.
	authed := e.Group("", RequireAuth(service))
	authed.GET("/api/auth/me", h.Me)
	authed.PATCH("/api/auth/profile", h.UpdateProfile)
	authed.POST("/api/auth/password", h.ChangePassword, middleware.RateLimit(5, time.Minute))
}
