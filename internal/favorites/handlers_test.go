package favorites

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tunefave/backend/internal/auth"
	"github.com/tunefave/backend/internal/db"
	apperrors "github.com/tunefave/backend/internal/errors"
)

// fakeFavoriteStore keeps favorites in memory, keyed per user the way the
// unique constraint does.
type fakeFavoriteStore struct {
	favorites map[uuid.UUID][]*db.Favorite
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{favorites: make(map[uuid.UUID][]*db.Favorite)}
}

func (s *fakeFavoriteStore) Create(_ context.Context, fav *db.Favorite) error {
	for _, existing := range s.favorites[fav.UserID] {
		if existing.SpotifyID == fav.SpotifyID {
			return db.ErrFavoriteExists
		}
	}
	s.favorites[fav.UserID] = append(s.favorites[fav.UserID], fav)
	return nil
}

func (s *fakeFavoriteStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*db.Favorite, error) {
	return s.favorites[userID], nil
}

func (s *fakeFavoriteStore) Delete(_ context.Context, userID uuid.UUID, spotifyID string) error {
	list := s.favorites[userID]
	for i, fav := range list {
		if fav.SpotifyID == spotifyID {
			s.favorites[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return db.ErrFavoriteNotFound
}

type envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data"`
	Error   *apperrors.ErrorBody `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env
}

// newFavoritesMux routes the handlers the way the server does, so PathValue
// works in tests.
func newFavoritesMux(store FavoriteStore) *http.ServeMux {
	h := NewHandlers(store)
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/favorites", apperrors.HandleFunc(h.List))
	mux.Handle("POST /api/v1/favorites", apperrors.HandleFunc(h.Create))
	mux.Handle("DELETE /api/v1/favorites/{spotify_id}", apperrors.HandleFunc(h.Delete))
	return mux
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	userCtx := &auth.UserContext{UserID: userID, Email: "alice@example.com", Username: "alice"}
	return r.WithContext(context.WithValue(r.Context(), auth.UserContextKey, userCtx))
}

func TestCreateFavorite(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	userID := uuid.New()

	body := `{"spotify_id":"4uLU6hMCjMI75M1A2tKUQC","type":"track","name":"Never Gonna Give You Up","image_url":"https://img.example/1.jpg"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/favorites", body, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("success = false, want true")
	}

	var resp FavoriteResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if resp.SpotifyID != "4uLU6hMCjMI75M1A2tKUQC" || resp.Type != "track" {
		t.Errorf("response = %+v", resp)
	}
	if resp.ImageURL != "https://img.example/1.jpg" {
		t.Errorf("image_url = %q, want stored URL", resp.ImageURL)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("id = %q, want a UUID", resp.ID)
	}
}

func TestCreateFavoriteDuplicate(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	userID := uuid.New()

	body := `{"spotify_id":"dup1","type":"album","name":"Discovery"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/favorites", body, userID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/favorites", body, userID))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != apperrors.CodeFavoriteExists {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeFavoriteExists)
	}

	// The same spotify_id for a different user is not a duplicate
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/favorites", body, uuid.New()))
	if rec.Code != http.StatusCreated {
		t.Errorf("other user create status = %d, want 201", rec.Code)
	}
}

func TestCreateFavoriteValidation(t *testing.T) {
	mux := newFavoritesMux(newFakeFavoriteStore())
	userID := uuid.New()

	tests := []struct {
		name string
		body string
	}{
		{"missing spotify_id", `{"type":"track","name":"Song"}`},
		{"missing type", `{"spotify_id":"abc","name":"Song"}`},
		{"missing name", `{"spotify_id":"abc","type":"track"}`},
		{"invalid type", `{"spotify_id":"abc","type":"playlist","name":"Mix"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/favorites", tt.body, userID))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != apperrors.CodeValidationError {
				t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeValidationError)
			}
		})
	}
}

func TestListFavorites(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	userID := uuid.New()

	seed := []struct{ spotifyID, typ, name string }{
		{"t1", "track", "Around the World"},
		{"a1", "artist", "Beyoncé"},
		{"al1", "album", "Random Access Memories"},
	}
	for _, s := range seed {
		store.Create(context.Background(), &db.Favorite{
			ID: uuid.New(), UserID: userID, SpotifyID: s.spotifyID,
			Type: s.typ, Name: s.name, CreatedAt: time.Now(),
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/favorites", "", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var data struct {
		Favorites []FavoriteResponse `json:"favorites"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(data.Favorites) != 3 {
		t.Errorf("got %d favorites, want 3", len(data.Favorites))
	}

	// Another user sees an empty list, not a missing one
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/favorites", "", uuid.New()))
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.Favorites == nil || len(data.Favorites) != 0 {
		t.Errorf("favorites = %v, want empty slice", data.Favorites)
	}
}

func TestListFavoritesFilter(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	userID := uuid.New()

	for _, name := range []string{"Beyoncé", "Björk", "Radiohead"} {
		store.Create(context.Background(), &db.Favorite{
			ID: uuid.New(), UserID: userID, SpotifyID: "id-" + name,
			Type: "artist", Name: name, CreatedAt: time.Now(),
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/favorites?q=beyonce", "", userID))

	env := decodeEnvelope(t, rec)
	var data struct {
		Favorites []FavoriteResponse `json:"favorites"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(data.Favorites) != 1 || data.Favorites[0].Name != "Beyoncé" {
		t.Errorf("favorites = %+v, want only Beyoncé", data.Favorites)
	}
}

func TestDeleteFavorite(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	userID := uuid.New()

	store.Create(context.Background(), &db.Favorite{
		ID: uuid.New(), UserID: userID, SpotifyID: "gone1",
		Type: "track", Name: "Song", CreatedAt: time.Now(),
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/favorites/gone1", "", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	// Deleting again is a 404
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/favorites/gone1", "", userID))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != apperrors.CodeFavoriteNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeFavoriteNotFound)
	}
}

func TestDeleteFavoriteOtherUser(t *testing.T) {
	store := newFakeFavoriteStore()
	mux := newFavoritesMux(store)
	owner := uuid.New()

	store.Create(context.Background(), &db.Favorite{
		ID: uuid.New(), UserID: owner, SpotifyID: "owned1",
		Type: "track", Name: "Song", CreatedAt: time.Now(),
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/favorites/owned1", "", uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for another user's favorite", rec.Code)
	}
}

func TestFavoritesRequireUserContext(t *testing.T) {
	mux := newFavoritesMux(newFakeFavoriteStore())

	targets := []struct {
		method, target string
	}{
		{http.MethodGet, "/api/v1/favorites"},
		{http.MethodPost, "/api/v1/favorites"},
		{http.MethodDelete, "/api/v1/favorites/abc"},
	}

	for _, tt := range targets {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.target, rec.Code)
		}
	}
}
