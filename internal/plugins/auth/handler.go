package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
)

// Handler handles HTTP requests for authentication and profiles.
// Handlers are thin: they bind the request, call the service, and shape
// the response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// authResponse is the shape returned by register and login.
type authResponse struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Register creates a new account (POST /api/auth/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, token, err := h.service.Register(c.Request().Context(), RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: user.Profile(), Token: token})
}

// Login authenticates an existing account (POST /api/auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, token, err := h.service.Login(c.Request().Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: user.Profile(), Token: token})
}

// Me returns the authenticated user's profile (GET /api/auth/me).
func (h *Handler) Me(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), GetUserID(c))
	if err != nil {
		if apperror.IsCode(err, 404) {
			// Token valid but the account is gone.
			return apperror.NewUnauthorized("account no longer exists")
		}
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// UpdateProfile patches profile fields (PATCH /api/auth/profile).
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// ChangePassword rotates the account password and re-encrypts the user's
// stored data (POST /api/auth/password).
func (h *Handler) ChangePassword(c echo.Context) error {
	var req PasswordChangeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperror.NewBadRequest("currentPassword and newPassword are required")
	}

	if err := h.service.ChangePassword(c.Request().Context(), GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// PublicProfile returns another user's public profile by username
// (GET /api/users/:username).
func (h *Handler) PublicProfile(c echo.Context) error {
	user, err := h.service.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}
