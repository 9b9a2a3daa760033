package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tunefave/backend/internal/metrics"
)

const (
	accountsTokenURL = "https://accounts.spotify.com/api/token"
	apiBaseURL       = "https://api.spotify.com/v1"
	requestTimeout   = 10 * time.Second
)

// ErrNotConfigured is returned when the client credentials are unset. It is
// detected before any network call is attempted.
var ErrNotConfigured = errors.New("spotify credentials not configured")

// ErrNotFound is returned when a catalog item does not exist.
var ErrNotFound = errors.New("not found")

// AuthError reports a failed credential exchange. Status and Body carry the
// upstream response for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify token exchange failed: status %d: %s", e.Status, e.Body)
}

// APIError reports a non-success status from a catalog API call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify request failed: status %d: %s", e.Status, e.Body)
}

// Client provides access to the Spotify Web API using the client-credentials
// flow. The access token is cached in memory and exchanged again only once
// its lifetime has elapsed; a failed exchange is not retried, the next call
// simply attempts a fresh one.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// Overridable for tests.
	tokenURL string
	baseURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Spotify API client. Empty credentials are allowed;
// every call will then fail with ErrNotConfigured.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		tokenURL: accountsTokenURL,
		baseURL:  apiBaseURL,
	}
}

// Configured reports whether client credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// GetAccessToken returns a valid bearer token, performing a credential
// exchange only when the cached token is absent or expired. The lock spans
// the exchange so concurrent callers do not duplicate work.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	metrics.Default().IncCounter(metrics.CounterSpotifyTokenExchanges)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	return c.accessToken, nil
}

// doRequest performs an authenticated GET against the catalog API.
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	metrics.Default().IncCounter(metrics.CounterSpotifyRequests)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// Search queries the catalog. itemType and limit are passed through to the
// upstream query string; the HTTP handler is responsible for capping limit.
func (c *Client) Search(ctx context.Context, query, itemType string, limit int) (*SearchResults, error) {
	params := url.Values{
		"q":     {query},
		"type":  {itemType},
		"limit": {strconv.Itoa(limit)},
	}
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var results SearchResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &results, nil
}

// GetTrack fetches a single track by Spotify ID.
func (c *Client) GetTrack(ctx context.Context, id string) (*Track, error) {
	endpoint := fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(id))

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var track Track
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("failed to parse track response: %w", err)
	}

	return &track, nil
}

// GetAlbum fetches a single album by Spotify ID.
func (c *Client) GetAlbum(ctx context.Context, id string) (*Album, error) {
	endpoint := fmt.Sprintf("%s/albums/%s", c.baseURL, url.PathEscape(id))

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var album Album
	if err := json.Unmarshal(body, &album); err != nil {
		return nil, fmt.Errorf("failed to parse album response: %w", err)
	}

	return &album, nil
}

// GetArtist fetches a single artist by Spotify ID.
func (c *Client) GetArtist(ctx context.Context, id string) (*Artist, error) {
	endpoint := fmt.Sprintf("%s/artists/%s", c.baseURL, url.PathEscape(id))

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var artist Artist
	if err := json.Unmarshal(body, &artist); err != nil {
		return nil, fmt.Errorf("failed to parse artist response: %w", err)
	}

	return &artist, nil
}

// GetNewReleases fetches the newest albums in the catalog.
func (c *Client) GetNewReleases(ctx context.Context, limit int) ([]Album, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	endpoint := fmt.Sprintf("%s/browse/new-releases?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp newReleasesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse new releases response: %w", err)
	}

	return resp.Albums.Items, nil
}

// GetCategories fetches the browse categories used for catalog discovery.
func (c *Client) GetCategories(ctx context.Context, limit int) ([]Category, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	endpoint := fmt.Sprintf("%s/browse/categories?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp categoriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}

	return resp.Categories.Items, nil
}
