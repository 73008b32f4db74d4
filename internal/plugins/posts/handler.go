package posts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// Handler handles HTTP requests for the creator feed.
type Handler struct {
	service PostService
}

// NewHandler creates a new posts handler.
func NewHandler(service PostService) *Handler {
	return &Handler{service: service}
}

// List returns the feed (GET /api/posts, optional ?userId= filter).
func (h *Handler) List(c echo.Context) error {
	feed, err := h.service.List(c.Request().Context(), c.QueryParam("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feed)
}

// Create publishes a post (POST /api/posts).
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	post, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// Delete removes a post (DELETE /api/posts/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
