package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context key for the authenticated user ID. Other plugins read it via
// GetUserID rather than touching the key directly.
const contextKeyUserID = "auth_user_id"

// RequireAuth returns middleware that validates the Authorization bearer
// token and injects the user ID into the request context. Requests
// without a valid token get a 401.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return unauthorized(c)
			}

			userID, err := service.VerifyToken(token)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(contextKeyUserID, userID)
			return next(c)
		}
	}
}

// OptionalAuth returns middleware that injects the user ID when a valid
// token is present but passes anonymous requests through. Used on routes
// with public content (character listing shows public characters to
// anyone, plus the caller's own).
func OptionalAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c); token != "" {
				if userID, err := service.VerifyToken(token); err == nil {
					c.Set(contextKeyUserID, userID)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin returns middleware that additionally checks the
// authenticated user holds the admin role. Must run after RequireAuth.
func RequireAdmin(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == "" {
				return unauthorized(c)
			}
			user, err := service.GetUser(c.Request().Context(), userID)
			if err != nil || user.Role != RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "admin access required",
				})
			}
			return next(c)
		}
	}
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	userID, _ := c.Get(contextKeyUserID).(string)
	return userID
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// unauthorized writes the standard 401 JSON response.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "Unauthorized",
	})
}
