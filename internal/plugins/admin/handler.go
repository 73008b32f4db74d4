package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
)

// Handler handles HTTP requests for administration.
type Handler struct {
	service AdminService
}

// NewHandler creates a new admin handler.
func NewHandler(service AdminService) *Handler {
	return &Handler{service: service}
}

// ListUsers returns every account (GET /api/admin/users).
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// setRoleRequest is the body of PATCH /api/admin/users/:id/role.
type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes a user's role (PATCH /api/admin/users/:id/role).
func (h *Handler) SetRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	profile, err := h.service.SetRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Restart triggers a graceful restart (POST /api/admin/restart).
func (h *Handler) Restart(c echo.Context) error {
	h.service.Restart(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "restarting"})
}
