package chats

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// Handler handles HTTP requests for chats.
type Handler struct {
	service ChatService
}

// NewHandler creates a new chats handler.
func NewHandler(service ChatService) *Handler {
	return &Handler{service: service}
}

// List returns the caller's chats (GET /api/chats).
func (h *Handler) List(c echo.Context) error {
	chats, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chats)
}

// Get returns one chat (GET /api/chats/:id).
func (h *Handler) Get(c echo.Context) error {
	chat, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chat)
}

// Create stores a new chat (POST /api/chats).
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	chat, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, chat)
}

// UpdateMessages replaces a chat's transcript (PATCH /api/chats/:id/messages).
func (h *Handler) UpdateMessages(c echo.Context) error {
	var req UpdateMessagesRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	chat, err := h.service.UpdateMessages(c.Request().Context(), auth.GetUserID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chat)
}

// Delete removes a chat (DELETE /api/chats/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
