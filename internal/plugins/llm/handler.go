package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// Handler handles the chat streaming endpoint.
type Handler struct {
	service LLMService
}

// NewHandler creates a new LLM handler.
func NewHandler(service LLMService) *Handler {
	return &Handler{service: service}
}

// Stream relays a completion stream (POST /api/chat/stream). Once SSE
// headers are out, errors can no longer become HTTP statuses; they are
// sent as data events instead so the client can render them.
func (h *Handler) Stream(c echo.Context) error {
	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	resp, err := h.service.OpenStream(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		writeErrorEvent(w, fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(body)))
		return nil
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Client went away; drop the upstream stream too.
				return nil
			}
			w.Flush()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("upstream stream interrupted", slog.Any("error", err))
				writeErrorEvent(w, "stream interrupted")
			}
			return nil
		}
	}
}

// writeErrorEvent sends an error to the client as an SSE data event.
func writeErrorEvent(w *echo.Response, msg string) {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	fmt.Fprintf(w, "data: %s\n\n", payload)
	fmt.Fprint(w, "data: [DONE]\n\n")
	w.Flush()
}
