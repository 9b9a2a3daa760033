package api

import (
	"net/http"

	"github.com/tunefave/backend/internal/auth"
	apperrors "github.com/tunefave/backend/internal/errors"
	"github.com/tunefave/backend/internal/favorites"
	"github.com/tunefave/backend/internal/health"
	"github.com/tunefave/backend/internal/spotify"
)

type Router struct {
	mux              *http.ServeMux
	authHandlers     *auth.Handlers
	authService      *auth.Service
	favoriteHandlers *favorites.Handlers
	catalogHandlers  *spotify.Handlers
	healthChecker    *health.Checker
	metricsHandler   http.HandlerFunc
}

func NewRouter(
	authHandlers *auth.Handlers,
	authService *auth.Service,
	favoriteHandlers *favorites.Handlers,
	catalogHandlers *spotify.Handlers,
	healthChecker *health.Checker,
	metricsHandler http.HandlerFunc,
) *Router {
	r := &Router{
		mux:              http.NewServeMux(),
		authHandlers:     authHandlers,
		authService:      authService,
		favoriteHandlers: favoriteHandlers,
		catalogHandlers:  catalogHandlers,
		healthChecker:    healthChecker,
		metricsHandler:   metricsHandler,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Operational endpoints
	r.mux.HandleFunc("GET /health", r.healthChecker.Handler())
	r.mux.HandleFunc("GET /metrics", r.metricsHandler)

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /api/v1/auth/register", apperrors.HandleFunc(r.authHandlers.Register))
	r.mux.HandleFunc("POST /api/v1/auth/login", apperrors.HandleFunc(r.authHandlers.Login))
	r.mux.HandleFunc("POST /api/v1/auth/logout", apperrors.HandleFunc(r.authHandlers.Logout))
	r.mux.HandleFunc("GET /api/v1/auth/check", apperrors.HandleFunc(r.authHandlers.Check))

	// Auth routes (auth required)
	r.mux.HandleFunc("GET /api/v1/auth/me", r.withAuth(r.authHandlers.Me))

	// Favorites routes (auth required)
	r.mux.HandleFunc("GET /api/v1/favorites", r.withAuth(r.favoriteHandlers.List))
	r.mux.HandleFunc("POST /api/v1/favorites", r.withAuth(r.favoriteHandlers.Create))
	r.mux.HandleFunc("DELETE /api/v1/favorites/{spotify_id}", r.withAuth(r.favoriteHandlers.Delete))

	// Catalog routes (no auth required, matching the search page)
	r.mux.HandleFunc("GET /api/v1/catalog/search", apperrors.HandleFunc(r.catalogHandlers.Search))
	r.mux.HandleFunc("GET /api/v1/catalog/tracks/{id}", apperrors.HandleFunc(r.catalogHandlers.GetTrack))
	r.mux.HandleFunc("GET /api/v1/catalog/albums/{id}", apperrors.HandleFunc(r.catalogHandlers.GetAlbum))
	r.mux.HandleFunc("GET /api/v1/catalog/artists/{id}", apperrors.HandleFunc(r.catalogHandlers.GetArtist))
	r.mux.HandleFunc("GET /api/v1/catalog/new-releases", apperrors.HandleFunc(r.catalogHandlers.GetNewReleases))
	r.mux.HandleFunc("GET /api/v1/catalog/categories", apperrors.HandleFunc(r.catalogHandlers.GetCategories))
}

func (r *Router) withAuth(next apperrors.Handler) http.HandlerFunc {
	middleware := auth.Middleware(r.authService)
	handler := apperrors.HandleFunc(next)
	return func(w http.ResponseWriter, req *http.Request) {
		middleware(handler).ServeHTTP(w, req)
	}
}
