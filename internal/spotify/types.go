// Spotify Web API response types, trimmed to the fields the application
// serves. Shapes follow https://developer.spotify.com/documentation/web-api/reference/
package spotify

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs carries known external links for an item.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres,omitempty"`
	Images       []Image      `json:"images,omitempty"`
	Popularity   int          `json:"popularity,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Album represents a Spotify album.
type Album struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	ReleaseDate  string       `json:"release_date,omitempty"`
	TotalTracks  int          `json:"total_tracks,omitempty"`
	Images       []Image      `json:"images,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Track represents a Spotify track.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	Popularity   int          `json:"popularity"`
	PreviewURL   string       `json:"preview_url,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// TrackPage is one page of track results.
type TrackPage struct {
	Items  []Track `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// AlbumPage is one page of album results.
type AlbumPage struct {
	Items  []Album `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ArtistPage is one page of artist results.
type ArtistPage struct {
	Items  []Artist `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

// Category represents a Spotify browse category.
type Category struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Icons []Image `json:"icons,omitempty"`
}

// CategoryPage is one page of browse categories.
type CategoryPage struct {
	Items  []Category `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// SearchResults holds whichever result pages the requested types produced.
type SearchResults struct {
	Tracks  *TrackPage  `json:"tracks,omitempty"`
	Albums  *AlbumPage  `json:"albums,omitempty"`
	Artists *ArtistPage `json:"artists,omitempty"`
}

// tokenResponse is the raw credential-exchange response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// newReleasesResponse is the raw browse/new-releases response body.
type newReleasesResponse struct {
	Albums AlbumPage `json:"albums"`
}

// categoriesResponse is the raw browse/categories response body.
type categoriesResponse struct {
	Categories CategoryPage `json:"categories"`
}
