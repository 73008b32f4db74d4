package characters

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// Handler handles HTTP requests for characters.
type Handler struct {
	service CharacterService
}

// NewHandler creates a new characters handler.
func NewHandler(service CharacterService) *Handler {
	return &Handler{service: service}
}

// List returns the characters visible to the caller (GET /api/characters).
// Works for anonymous callers too, who only see public characters.
func (h *Handler) List(c echo.Context) error {
	chars, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chars)
}

// Create stores a new character (POST /api/characters).
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	ch, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}

// Update patches an owned character (PATCH /api/characters/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	ch, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

// Delete removes an owned character (DELETE /api/characters/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ImportPNG parses a character card embedded in a PNG
// (POST /api/characters/import/png).
func (h *Handler) ImportPNG(c echo.Context) error {
	var req ImportPNGRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.Base64 == "" {
		return apperror.NewValidation("image data is required")
	}

	ch, err := h.service.ImportPNG(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

// ImportJSON imports a character card given as raw JSON
// (POST /api/characters/import/json).
func (h *Handler) ImportJSON(c echo.Context) error {
	var req ImportJSONRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.Data == nil {
		return apperror.NewValidation("card data is required")
	}

	ch, err := h.service.ImportJSON(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}
