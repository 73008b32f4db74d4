// Package app is the application bootstrap and dependency injection root.
// It creates the Echo instance, wires every plugin together, and serves
// the static SPA frontend alongside the JSON API.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/config"
	"github.com/tavernhq/tavern/internal/crypto"
	"github.com/tavernhq/tavern/internal/database"
	"github.com/tavernhq/tavern/internal/middleware"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Store is the flat-file collection store shared by all plugins.
	Store *database.Store

	// Redis is the optional marketplace proxy cache. Nil when disabled.
	Redis *redis.Client

	// Keys is the in-memory session key cache for field encryption.
	Keys *crypto.SessionKeyStore

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance and configures the Echo server with
// global middleware and error handling.
func New(cfg *config.Config, store *database.Store, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Trust forwarding headers from local reverse proxies and Docker
	// bridges so c.RealIP() sees the actual client.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fd00::/8",
	})

	app := &App{
		Config: cfg,
		Store:  store,
		Redis:  rdb,
		Keys:   crypto.NewSessionKeyStore(),
		Echo:   e,
	}

	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware in order of execution.
// Recovery is outermost so it catches panics from everything below.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: []string{a.Config.BaseURL},
	}))
}

// errorHandler is the custom Echo error handler. API requests get a JSON
// error; anything else falls through to the SPA entry point so
// client-side routes deep-link correctly.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed. Streaming
	// endpoints report their own errors as SSE events.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if isAPIRequest(c) {
		c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	// Unknown non-API GETs are SPA routes: serve the app shell and let
	// the client router handle them.
	if code == http.StatusNotFound && c.Request().Method == http.MethodGet {
		index := filepath.Join(a.Config.PublicDir, "index.html")
		if _, statErr := os.Stat(index); statErr == nil {
			c.File(index)
			return
		}
	}

	c.JSON(code, map[string]string{
		"error":   http.StatusText(code),
		"message": message,
	})
}

// isAPIRequest returns true if the request targets the JSON API.
func isAPIRequest(c echo.Context) bool {
	path := c.Request().URL.Path
	return len(path) >= 4 && path[:4] == "/api"
}

// Restart asks the process to shut down gracefully by signalling itself.
// The supervisor (Docker, systemd) brings it back up.
func (a *App) Restart() {
	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		slog.Error("failed to signal restart", slog.Any("error", err))
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Tavern server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
