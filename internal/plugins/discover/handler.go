package discover

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
)

// Handler handles HTTP requests for the marketplace proxy.
type Handler struct {
	service DiscoverService
}

// NewHandler creates a new discover handler.
func NewHandler(service DiscoverService) *Handler {
	return &Handler{service: service}
}

// Search proxies a marketplace search (GET /api/chub/search).
func (h *Handler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	q := SearchQuery{
		Term: c.QueryParam("q"),
		Page: page,
		Sort: c.QueryParam("sort"),
		NSFW: c.QueryParam("nsfw") == "true",
	}

	body, err := h.service.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

// downloadRequest is the body of POST /api/chub/download.
type downloadRequest struct {
	FullPath string `json:"fullPath"`
}

// Download fetches a character card and returns it base64-encoded
// (POST /api/chub/download).
func (h *Handler) Download(c echo.Context) error {
	var req downloadRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.FullPath == "" {
		return apperror.NewValidation("fullPath is required")
	}

	b64, err := h.service.Download(c.Request().Context(), req.FullPath)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"base64": b64})
}

// Avatar relays a marketplace avatar image (GET /api/chub/avatar).
func (h *Handler) Avatar(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return apperror.NewValidation("url is required")
	}

	body, contentType, err := h.service.Avatar(c.Request().Context(), rawURL)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, contentType, body)
}
