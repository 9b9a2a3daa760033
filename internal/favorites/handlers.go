// Package favorites implements the user favorites endpoints: saved
// tracks, albums, and artists keyed by (user, spotify_id).
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tunefave/backend/internal/auth"
	"github.com/tunefave/backend/internal/db"
	apperrors "github.com/tunefave/backend/internal/errors"
)

// FavoriteStore is the subset of the favorite repository the handlers need.
type FavoriteStore interface {
	Create(ctx context.Context, fav *db.Favorite) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*db.Favorite, error)
	Delete(ctx context.Context, userID uuid.UUID, spotifyID string) error
}

type CreateRequest struct {
	SpotifyID   string `json:"spotify_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

type FavoriteResponse struct {
	ID          string    `json:"id"`
	SpotifyID   string    `json:"spotify_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Handlers struct {
	store FavoriteStore
}

func NewHandlers(store FavoriteStore) *Handlers {
	return &Handlers{store: store}
}

// List handles GET /api/v1/favorites. An optional q parameter filters by
// favorite name, diacritic-insensitive.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	favorites, err := h.store.ListByUser(r.Context(), userCtx.UserID)
	if err != nil {
		return apperrors.DatabaseError("failed to load favorites").WithCause(err)
	}

	normalizedQuery := normalizeName(r.URL.Query().Get("q"))

	responses := make([]FavoriteResponse, 0, len(favorites))
	for _, fav := range favorites {
		if !matchesFilter(fav.Name, normalizedQuery) {
			continue
		}
		responses = append(responses, favoriteResponse(fav))
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, map[string]any{
		"favorites": responses,
	})
	return nil
}

// Create handles POST /api/v1/favorites
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.SpotifyID == "" || req.Type == "" || req.Name == "" {
		return apperrors.ValidationError("spotify_id, type and name are required")
	}

	if !db.ValidFavoriteType(req.Type) {
		return apperrors.ValidationError(fmt.Sprintf("type must be %s, %s or %s",
			db.FavoriteTypeTrack, db.FavoriteTypeAlbum, db.FavoriteTypeArtist))
	}

	fav := &db.Favorite{
		ID:        uuid.New(),
		UserID:    userCtx.UserID,
		SpotifyID: req.SpotifyID,
		Type:      req.Type,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if req.ImageURL != "" {
		fav.ImageURL.String = req.ImageURL
		fav.ImageURL.Valid = true
	}
	if req.ExternalURL != "" {
		fav.ExternalURL.String = req.ExternalURL
		fav.ExternalURL.Valid = true
	}

	if err := h.store.Create(r.Context(), fav); err != nil {
		if errors.Is(err, db.ErrFavoriteExists) {
			return apperrors.FavoriteExists()
		}
		return apperrors.DatabaseError("failed to save favorite").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusCreated, favoriteResponse(fav))
	return nil
}

// Delete handles DELETE /api/v1/favorites/{spotify_id}. Deleting a favorite
// that does not exist, or that belongs to another user, is a 404 rather than
// a silent success.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	spotifyID := r.PathValue("spotify_id")
	if spotifyID == "" {
		return apperrors.ValidationError("spotify_id is required")
	}

	if err := h.store.Delete(r.Context(), userCtx.UserID, spotifyID); err != nil {
		if errors.Is(err, db.ErrFavoriteNotFound) {
			return apperrors.FavoriteNotFound()
		}
		return apperrors.DatabaseError("failed to delete favorite").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, map[string]string{
		"message": "favorite removed",
	})
	return nil
}

func favoriteResponse(fav *db.Favorite) FavoriteResponse {
	resp := FavoriteResponse{
		ID:        fav.ID.String(),
		SpotifyID: fav.SpotifyID,
		Type:      fav.Type,
		Name:      fav.Name,
		CreatedAt: fav.CreatedAt,
	}
	if fav.ImageURL.Valid {
		resp.ImageURL = fav.ImageURL.String
	}
	if fav.ExternalURL.Valid {
		resp.ExternalURL = fav.ExternalURL.String
	}
	return resp
}
