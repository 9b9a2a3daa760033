package main

import (
	"context"
	"net/http"
	"os"

	"github.com/tunefave/backend/internal/api"
	"github.com/tunefave/backend/internal/auth"
	"github.com/tunefave/backend/internal/cache"
	"github.com/tunefave/backend/internal/config"
	"github.com/tunefave/backend/internal/db"
	apperrors "github.com/tunefave/backend/internal/errors"
	"github.com/tunefave/backend/internal/favorites"
	"github.com/tunefave/backend/internal/health"
	"github.com/tunefave/backend/internal/logger"
	"github.com/tunefave/backend/internal/metrics"
	"github.com/tunefave/backend/internal/middleware"
	"github.com/tunefave/backend/internal/spotify"
)

func main() {
	ctx := context.Background()
	log := logger.New(os.Stdout, logger.LevelInfo, "server")
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "invalid configuration", err)
		os.Exit(1)
	}

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	// The cache is optional: without Redis the catalog endpoints hit
	// Spotify on every request.
	responseCache, err := cache.New(cfg.RedisAddr)
	if err != nil {
		log.Warn(ctx, "redis unavailable, running without response cache", map[string]interface{}{
			"addr":  cfg.RedisAddr,
			"error": err.Error(),
		})
		responseCache = nil
	}
	defer responseCache.Close()

	userRepo := db.NewUserRepository(database)
	favoriteRepo := db.NewFavoriteRepository(database)

	authService := auth.NewService(userRepo, cfg.JWTSecret)
	authHandlers := auth.NewHandlers(authService)
	favoriteHandlers := favorites.NewHandlers(favoriteRepo)

	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if !spotifyClient.Configured() {
		log.Warn(ctx, "spotify credentials not configured, catalog endpoints will fail")
	}
	catalogHandlers := spotify.NewHandlers(spotifyClient, responseCache)

	healthChecker := health.NewChecker(&health.CheckerConfig{
		DB:                database.DB,
		Redis:             responseCache.Client(),
		SpotifyConfigured: spotifyClient.Configured,
		Version:           version,
	})

	appMetrics := metrics.Default()

	router := api.NewRouter(
		authHandlers,
		authService,
		favoriteHandlers,
		catalogHandlers,
		healthChecker,
		appMetrics.Handler(),
	)

	handler := middleware.Chain(router,
		apperrors.RequestIDMiddleware,
		middleware.Recoverer(log),
		middleware.Logging(log),
		metrics.Middleware(appMetrics),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Gzip,
	)

	log.Info(ctx, "starting server", map[string]interface{}{"addr": cfg.ServerAddr})
	if err := http.ListenAndServe(cfg.ServerAddr, handler); err != nil {
		log.Error(ctx, "server failed", err)
		os.Exit(1)
	}
}
