package spotify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/tunefave/backend/internal/errors"
)

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

// newCatalogMux routes the handlers the way the server does, so PathValue
// works in tests.
func newCatalogMux(client *Client) *http.ServeMux {
	h := NewHandlers(client, nil)
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/catalog/search", apperrors.HandleFunc(h.Search))
	mux.Handle("GET /api/v1/catalog/tracks/{id}", apperrors.HandleFunc(h.GetTrack))
	mux.Handle("GET /api/v1/catalog/new-releases", apperrors.HandleFunc(h.GetNewReleases))
	mux.Handle("GET /api/v1/catalog/categories", apperrors.HandleFunc(h.GetCategories))
	return mux
}

func TestSearchHandlerMissingQuery(t *testing.T) {
	mux := newCatalogMux(NewClient("id", "secret"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Error == nil || env.Error.Code != apperrors.CodeValidationError {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeValidationError)
	}
}

func TestSearchHandlerLimitValidation(t *testing.T) {
	mux := newCatalogMux(NewClient("id", "secret"))

	tests := []struct {
		name  string
		limit string
	}{
		{"over maximum", "51"},
		{"zero", "0"},
		{"negative", "-1"},
		{"not a number", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?q=test&limit="+tt.limit, nil))

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

func TestSearchHandlerNotConfigured(t *testing.T) {
	mux := newCatalogMux(NewClient("", ""))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?q=test", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != apperrors.CodeSpotifyNotConfigured {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeSpotifyNotConfigured)
	}
}

func TestSearchHandlerSuccess(t *testing.T) {
	tokenSrv, _ := newTokenServer(t, 3600)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResults{
			Tracks: &TrackPage{Items: []Track{{ID: "trk1", Name: "Song"}}, Total: 1},
		})
	}))
	defer apiSrv.Close()

	mux := newCatalogMux(newTestClient(tokenSrv.URL, apiSrv.URL))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?q=song&type=track", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("success = false, want true")
	}

	var results SearchResults
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if results.Tracks == nil || len(results.Tracks.Items) != 1 || results.Tracks.Items[0].ID != "trk1" {
		t.Errorf("results = %+v, want one track trk1", results)
	}
}

func TestGetTrackHandler(t *testing.T) {
	tokenSrv, _ := newTokenServer(t, 3600)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tracks/trk1" {
			json.NewEncoder(w).Encode(Track{ID: "trk1", Name: "Song"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer apiSrv.Close()

	mux := newCatalogMux(newTestClient(tokenSrv.URL, apiSrv.URL))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/tracks/trk1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var track Track
	if err := json.Unmarshal(env.Data, &track); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if track.Name != "Song" {
		t.Errorf("name = %q, want Song", track.Name)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/tracks/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != apperrors.CodeNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeNotFound)
	}
}

func TestCatalogHandlerUpstreamFailure(t *testing.T) {
	tokenSrv, _ := newTokenServer(t, 3600)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer apiSrv.Close()

	mux := newCatalogMux(newTestClient(tokenSrv.URL, apiSrv.URL))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?q=test", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != apperrors.CodeSpotifyError {
		t.Errorf("error = %+v, want code %s", env.Error, apperrors.CodeSpotifyError)
	}
}

func TestCategoriesHandler(t *testing.T) {
	tokenSrv, _ := newTokenServer(t, 3600)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(categoriesResponse{
			Categories: CategoryPage{Items: []Category{{ID: "jazz", Name: "Jazz"}}},
		})
	}))
	defer apiSrv.Close()

	mux := newCatalogMux(newTestClient(tokenSrv.URL, apiSrv.URL))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var categories []Category
	if err := json.Unmarshal(env.Data, &categories); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "jazz" {
		t.Errorf("categories = %+v, want one jazz category", categories)
	}

	// The same limit rule applies as everywhere else in the catalog
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories?limit=51", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=51 status = %d, want 400", rec.Code)
	}
}

func TestNewReleasesHandler(t *testing.T) {
	tokenSrv, _ := newTokenServer(t, 3600)
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(newReleasesResponse{
			Albums: AlbumPage{Items: []Album{{ID: "alb1", Name: "New Album"}}},
		})
	}))
	defer apiSrv.Close()

	mux := newCatalogMux(newTestClient(tokenSrv.URL, apiSrv.URL))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/new-releases?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var albums []Album
	if err := json.Unmarshal(env.Data, &albums); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(albums) != 1 || albums[0].Name != "New Album" {
		t.Errorf("albums = %+v, want one album", albums)
	}
}
