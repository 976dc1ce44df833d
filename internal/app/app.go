package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elemephant/backend/internal/db"
	"github.com/elemephant/backend/internal/elements"
	"github.com/elemephant/backend/internal/handlers"
	"github.com/elemephant/backend/internal/middleware"
	"github.com/elemephant/backend/internal/observability"
	"github.com/elemephant/backend/internal/platform/gcp"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/platform/openai"
	"github.com/elemephant/backend/internal/repos"
	"github.com/elemephant/backend/internal/server"
	"github.com/elemephant/backend/internal/services"
)

// App owns the wired server and its shutdown hooks.
type App struct {
	Log    *logger.Logger
	Config Config

	httpServer   *http.Server
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "elemephant-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		return nil, err
	}
	thePG := postgresService.DB()

	// Element dataset
	dataset, err := elements.Load()
	if err != nil {
		return nil, fmt.Errorf("load element dataset: %w", err)
	}

	// Repos
	log.Info("Setting up repos...")
	elephantRepo := repos.NewElephantRepo(thePG, log)
	storyRepo := repos.NewStoryRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		return nil, fmt.Errorf("init bucket service: %w", err)
	}
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	elephantService := services.NewElephantService(thePG, log, elephantRepo, storyRepo, bucketService, dataset)
	storyService := services.NewStoryService(thePG, log, elephantRepo, storyRepo)
	generationService := services.NewGenerationService(log, openaiClient)
	authService := services.NewAuthService(log, cfg.AdminAPIToken, cfg.JWTSecretKey, cfg.TokenTTL)
	placeholderService := services.NewPlaceholderService(log, dataset)

	// Handlers
	log.Info("Setting up handlers...")
	authHandler := handlers.NewAuthHandler(log, authService)
	elephantHandler := handlers.NewElephantHandler(log, elephantService)
	storyHandler := handlers.NewStoryHandler(log, storyService)
	generationHandler := handlers.NewGenerationHandler(log, generationService)
	placeholderHandler := handlers.NewPlaceholderHandler(log, placeholderService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		ElephantHandler:    elephantHandler,
		StoryHandler:       storyHandler,
		GenerationHandler:  generationHandler,
		PlaceholderHandler: placeholderHandler,
		AllowOrigins:       cfg.AllowOrigins,
	})

	return &App{
		Log:    log,
		Config: cfg,
		httpServer: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		},
		otelShutdown: otelShutdown,
	}, nil
}

// Start blocks until the listener fails or Stop is called.
func (a *App) Start() error {
	a.Log.Info("Server listening", "addr", a.httpServer.Addr)
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and flushes traces.
func (a *App) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if a.otelShutdown != nil {
		if otelErr := a.otelShutdown(shutdownCtx); otelErr != nil {
			a.Log.Warn("otel shutdown failed", "error", otelErr)
		}
	}
	a.Log.Sync()
	return err
}
