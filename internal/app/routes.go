package app

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavernhq/tavern/internal/plugins/admin"
	"github.com/tavernhq/tavern/internal/plugins/auth"
	"github.com/tavernhq/tavern/internal/plugins/characters"
	"github.com/tavernhq/tavern/internal/plugins/chats"
	"github.com/tavernhq/tavern/internal/plugins/discover"
	"github.com/tavernhq/tavern/internal/plugins/llm"
	"github.com/tavernhq/tavern/internal/plugins/posts"
	"github.com/tavernhq/tavern/internal/plugins/search"
	"github.com/tavernhq/tavern/internal/plugins/settings"
	"github.com/tavernhq/tavern/internal/plugins/translate"
)

// RegisterRoutes builds every plugin and registers all application
// routes. This is the single place where the dependency graph is wired.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// Health check endpoint for Docker health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- auth ---
	secret, err := auth.LoadOrCreateSecret(a.Config.DataDir)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenIssuer(secret, a.Config.Auth.TokenTTL)
	userRepo := auth.NewUserRepository(a.Store)
	authService := auth.NewAuthService(userRepo, a.Keys, tokens, a.Config.Auth.BcryptCost)
	auth.RegisterRoutes(e, auth.NewHandler(authService), authService)

	// --- per-user encrypted collections ---
	settingsRepo := settings.NewSettingsRepository(a.Store)
	characterRepo := characters.NewCharacterRepository(a.Store)
	chatRepo := chats.NewChatRepository(a.Store)

	// A password change re-derives the user's key, so every encrypted
	// collection re-seals under the new one.
	authService.RegisterReencrypter(settingsRepo)
	authService.RegisterReencrypter(characterRepo)
	authService.RegisterReencrypter(chatRepo)

	settingsService := settings.NewSettingsService(settingsRepo, a.Keys)
	settings.RegisterRoutes(e, settings.NewHandler(settingsService), authService)

	characterService := characters.NewCharacterService(characterRepo, a.Keys)
	characters.RegisterRoutes(e, characters.NewHandler(characterService), authService)

	chatService := chats.NewChatService(chatRepo, a.Keys)
	chats.RegisterRoutes(e, chats.NewHandler(chatService), authService)

	// --- LLM relay ---
	llmService := llm.NewLLMService(settingsService)
	llm.RegisterRoutes(e, llm.NewHandler(llmService), authService)

	// --- marketplace proxy ---
	cacheTTL := a.Config.Redis.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	discoverService := discover.NewDiscoverService(a.Redis, cacheTTL)
	discover.RegisterRoutes(e, discover.NewHandler(discoverService), authService)

	// --- community ---
	postService := posts.NewPostService(posts.NewPostRepository(a.Store), authService)
	posts.RegisterRoutes(e, posts.NewHandler(postService), authService)

	searchService := search.NewSearchService(userRepo, characterRepo)
	search.RegisterRoutes(e, search.NewHandler(searchService), authService)

	translate.RegisterRoutes(e, translate.NewHandler(translate.NewTranslateService()), authService)

	// --- admin ---
	adminService := admin.NewAdminService(userRepo, a.Restart)
	admin.RegisterRoutes(e, admin.NewHandler(adminService), authService)

	// --- static SPA frontend ---
	// Registered last so /api routes always win. Unknown paths fall back
	// to index.html via the error handler.
	e.Static("/", a.Config.PublicDir)

	return nil
}
