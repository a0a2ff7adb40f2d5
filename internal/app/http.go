package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/handler"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/provider"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/provider/github"
	"github.com/chakravarthigit/prompt-frontend/internal/auth/provider/google"
	"github.com/chakravarthigit/prompt-frontend/internal/config"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
	"github.com/chakravarthigit/prompt-frontend/internal/middleware"
)

// Views that must never render without a reconciled session.
var protectedPaths = []string{
	"/playground",
	"/compare",
	"/templates",
	"/profile",
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	svc := auth.NewService(infra.API, infra.Sessions, infra.Bus)

	registry := provider.NewRegistry(socialProviders(ctx, cfg)...)

	authHandler := handler.NewHandler(svc, registry)

	guard := middleware.NewGuard(svc, cfg.GuardInterval, infra.Bus)
	if err := guard.Start(); err != nil {
		return nil, nil, err
	}

	if err := infra.Monitor.Start(ctx); err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// While offline the whole table collapses to the fallback view.
	router.Use(middleware.OfflineGate(infra.Monitor))

	// Second, independent gate for direct URL loads of protected
	// paths; deliberately redundant with the per-route guard below.
	router.Use(middleware.ProtectedPathGate(svc, protectedPaths...))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", page("index.html"))
	router.GET("/home", page("index.html"))
	router.GET("/login", page("login.html"))
	router.GET("/signup", page("signup.html"))
	router.GET("/forgot-password", page("forgot-password.html"))
	router.GET("/reset-password", page("reset-password.html"))
	router.GET("/privacy-policy", page("privacy-policy.html"))
	router.GET("/terms-conditions", page("terms-conditions.html"))

	router.GET(middleware.OfflinePath, middleware.OfflineFallback(infra.Monitor, "./web/404.html"))

	// ----------------------------
	// Protected Routes
	// ----------------------------

	views := router.Group("/")
	views.Use(middleware.GinRequireAuth(guard))

	views.GET("/playground", page("playground.html"))
	views.GET("/compare", page("compare.html"))
	views.GET("/templates", page("templates.html"))
	views.GET("/profile", page("profile.html"))

	router.NoRoute(page("404.html"))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		guard.Stop()
		return infra.close()
	}, nil
}

func page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.File("./web/" + name)
	}
}

// socialProviders builds whichever providers are configured;
// missing credentials disable a provider instead of failing startup.
func socialProviders(ctx context.Context, cfg config.Config) []provider.OAuthProvider {
	var list []provider.OAuthProvider

	if cfg.GoogleClientID != "" {
		p, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			logger.Warn("google sign-in disabled", map[string]any{"error": err.Error()})
		} else {
			list = append(list, p)
		}
	}

	if cfg.GitHubClientID != "" {
		p, err := github.New(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURL)
		if err != nil {
			logger.Warn("github sign-in disabled", map[string]any{"error": err.Error()})
		} else {
			list = append(list, p)
		}
	}

	return list
}
