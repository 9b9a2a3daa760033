package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tunefave/backend/internal/cache"
	apperrors "github.com/tunefave/backend/internal/errors"
	"github.com/tunefave/backend/internal/logger"
)

const (
	defaultLimit = 20
	maxLimit     = 50

	searchCacheTTL = 5 * time.Minute
	lookupCacheTTL = time.Hour
	browseCacheTTL = 30 * time.Minute
)

type Handlers struct {
	client *Client
	cache  *cache.Cache
	log    *logger.Logger
}

func NewHandlers(client *Client, cache *cache.Cache) *Handlers {
	return &Handlers{
		client: client,
		cache:  cache,
		log:    logger.Default().WithComponent("spotify"),
	}
}

// Search handles GET /api/v1/catalog/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) error {
	requestID := apperrors.GetRequestID(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		return apperrors.ValidationError("query parameter 'q' is required")
	}

	itemType := r.URL.Query().Get("type")
	if itemType == "" {
		itemType = "track"
	}

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("spotify:search:%s:%s:%d", itemType, query, limit)
	if cached, ok := h.cache.Get(r.Context(), cacheKey); ok {
		apperrors.WriteJSON(w, requestID, http.StatusOK, json.RawMessage(cached))
		return nil
	}

	results, err := h.client.Search(r.Context(), query, itemType, limit)
	if err != nil {
		return h.mapClientError(r, err, "search")
	}

	h.storeCached(r, cacheKey, results, searchCacheTTL)
	apperrors.WriteJSON(w, requestID, http.StatusOK, results)
	return nil
}

// GetTrack handles GET /api/v1/catalog/tracks/{id}
func (h *Handlers) GetTrack(w http.ResponseWriter, r *http.Request) error {
	return h.lookup(w, r, "track", func(id string) (any, error) {
		return h.client.GetTrack(r.Context(), id)
	})
}

// GetAlbum handles GET /api/v1/catalog/albums/{id}
func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) error {
	return h.lookup(w, r, "album", func(id string) (any, error) {
		return h.client.GetAlbum(r.Context(), id)
	})
}

// GetArtist handles GET /api/v1/catalog/artists/{id}
func (h *Handlers) GetArtist(w http.ResponseWriter, r *http.Request) error {
	return h.lookup(w, r, "artist", func(id string) (any, error) {
		return h.client.GetArtist(r.Context(), id)
	})
}

// GetNewReleases handles GET /api/v1/catalog/new-releases
func (h *Handlers) GetNewReleases(w http.ResponseWriter, r *http.Request) error {
	requestID := apperrors.GetRequestID(r.Context())

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("spotify:new-releases:%d", limit)
	if cached, ok := h.cache.Get(r.Context(), cacheKey); ok {
		apperrors.WriteJSON(w, requestID, http.StatusOK, json.RawMessage(cached))
		return nil
	}

	albums, err := h.client.GetNewReleases(r.Context(), limit)
	if err != nil {
		return h.mapClientError(r, err, "new releases")
	}

	h.storeCached(r, cacheKey, albums, browseCacheTTL)
	apperrors.WriteJSON(w, requestID, http.StatusOK, albums)
	return nil
}

// GetCategories handles GET /api/v1/catalog/categories
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) error {
	requestID := apperrors.GetRequestID(r.Context())

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("spotify:categories:%d", limit)
	if cached, ok := h.cache.Get(r.Context(), cacheKey); ok {
		apperrors.WriteJSON(w, requestID, http.StatusOK, json.RawMessage(cached))
		return nil
	}

	categories, err := h.client.GetCategories(r.Context(), limit)
	if err != nil {
		return h.mapClientError(r, err, "categories")
	}

	h.storeCached(r, cacheKey, categories, browseCacheTTL)
	apperrors.WriteJSON(w, requestID, http.StatusOK, categories)
	return nil
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request, resource string, fetch func(id string) (any, error)) error {
	requestID := apperrors.GetRequestID(r.Context())

	id := r.PathValue("id")
	if id == "" {
		return apperrors.ValidationError("id is required")
	}

	cacheKey := fmt.Sprintf("spotify:%s:%s", resource, id)
	if cached, ok := h.cache.Get(r.Context(), cacheKey); ok {
		apperrors.WriteJSON(w, requestID, http.StatusOK, json.RawMessage(cached))
		return nil
	}

	item, err := fetch(id)
	if err != nil {
		return h.mapClientError(r, err, resource)
	}

	h.storeCached(r, cacheKey, item, lookupCacheTTL)
	apperrors.WriteJSON(w, requestID, http.StatusOK, item)
	return nil
}

func (h *Handlers) storeCached(r *http.Request, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	h.cache.Set(r.Context(), key, string(data), ttl)
}

// mapClientError translates client-level failures into AppErrors.
func (h *Handlers) mapClientError(r *http.Request, err error, resource string) error {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return apperrors.SpotifyNotConfigured()
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound(resource)
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		h.log.Error(r.Context(), "spotify credential exchange failed", err, map[string]interface{}{
			"status": authErr.Status,
		})
		return apperrors.SpotifyError("catalog authentication failed").WithCause(err)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		h.log.Error(r.Context(), "spotify request failed", err, map[string]interface{}{
			"status":   apiErr.Status,
			"resource": resource,
		})
		return apperrors.SpotifyError(fmt.Sprintf("failed to fetch %s", resource)).WithCause(err)
	}

	return apperrors.SpotifyError(fmt.Sprintf("failed to fetch %s", resource)).WithCause(err)
}

func parseLimit(r *http.Request) (int, error) {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return 0, apperrors.ValidationError("limit must be a positive integer")
		}
		if parsed > maxLimit {
			return 0, apperrors.ValidationError(fmt.Sprintf("limit must be at most %d", maxLimit))
		}
		limit = parsed
	}
	return limit, nil
}
