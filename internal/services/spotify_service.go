package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Spotify API endpoints
const (
	DefaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
	DefaultSpotifyAPIURL   = "https://api.spotify.com/v1"
)

// search types requested by SearchMulti, in the order Spotify documents them
const spotifySearchTypes = "album,artist,playlist,track"

// tokens are refreshed this long before they expire
const tokenExpiryMargin = 30 * time.Second

// SpotifyOptions configures the Spotify catalog client
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	// RefreshToken switches from client credentials to a user token,
	// which the player endpoints require.
	RefreshToken string
	APIURL       string
	TokenURL     string
	Timeout      time.Duration
	RetryCount   int
}

// spotifyService implements CatalogService for the Spotify Web API
type spotifyService struct {
	client      *resty.Client
	fetchToken  func(ctx context.Context) (*oauth2.Token, error)
	accessToken string
	tokenExpiry time.Time
	mu          sync.RWMutex
}

// spotifyErrorResponse is the error body returned by the Web API
type spotifyErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// spotifySearchResponse mirrors the paging objects of /search.
// Spotify may return null entries inside playlist pages, hence the pointers.
type spotifySearchResponse struct {
	Tracks struct {
		Items []*Track `json:"items"`
	} `json:"tracks"`
	Albums struct {
		Items []*Album `json:"items"`
	} `json:"albums"`
	Artists struct {
		Items []*Artist `json:"items"`
	} `json:"artists"`
	Playlists struct {
		Items []*Playlist `json:"items"`
	} `json:"playlists"`
}

// playRequest is the body of PUT /me/player/play
type playRequest struct {
	URIs   []string   `json:"uris"`
	Offset playOffset `json:"offset"`
}

type playOffset struct {
	Position int `json:"position"`
}

// NewSpotifyService creates a new Spotify catalog client
func NewSpotifyService(opts SpotifyOptions) CatalogService {
	if opts.APIURL == "" {
		opts.APIURL = DefaultSpotifyAPIURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultSpotifyTokenURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.APIURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &spotifyService{
		client:     client,
		fetchToken: newTokenFetcher(opts),
	}
}

// newTokenFetcher picks the OAuth2 flow matching the configured credentials
func newTokenFetcher(opts SpotifyOptions) func(ctx context.Context) (*oauth2.Token, error) {
	if opts.RefreshToken != "" {
		userConfig := &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		}
		return func(ctx context.Context) (*oauth2.Token, error) {
			return userConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: opts.RefreshToken}).Token()
		}
	}

	appConfig := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
	}
	return appConfig.Token
}

// SearchMulti searches all four categories with a single request
func (s *spotifyService) SearchMulti(ctx context.Context, query string, limit int) (*SearchResults, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50 // Spotify API limit
	}

	var response spotifySearchResponse
	err := s.get(ctx, "search", "/search", map[string]string{
		"q":     query,
		"type":  spotifySearchTypes,
		"limit": strconv.Itoa(limit),
	}, &response)
	if err != nil {
		return nil, err
	}

	results := &SearchResults{
		Tracks:    make([]Track, 0, len(response.Tracks.Items)),
		Albums:    make([]Album, 0, len(response.Albums.Items)),
		Artists:   make([]Artist, 0, len(response.Artists.Items)),
		Playlists: make([]Playlist, 0, len(response.Playlists.Items)),
	}
	for _, track := range response.Tracks.Items {
		if track != nil {
			results.Tracks = append(results.Tracks, *track)
		}
	}
	for _, album := range response.Albums.Items {
		if album != nil {
			results.Albums = append(results.Albums, *album)
		}
	}
	for _, artist := range response.Artists.Items {
		if artist != nil {
			results.Artists = append(results.Artists, *artist)
		}
	}
	for _, playlist := range response.Playlists.Items {
		if playlist != nil {
			results.Playlists = append(results.Playlists, *playlist)
		}
	}

	slog.Debug("Spotify search completed",
		"query", query,
		"tracks", len(results.Tracks),
		"albums", len(results.Albums),
		"artists", len(results.Artists),
		"playlists", len(results.Playlists))

	return results, nil
}

// GetTrack fetches track details from Spotify API
func (s *spotifyService) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	var track Track
	if err := s.get(ctx, "get_track", "/tracks/"+url.PathEscape(trackID), nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// GetArtist fetches artist details from Spotify API
func (s *spotifyService) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := s.get(ctx, "get_artist", "/artists/"+url.PathEscape(artistID), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// FetchArtist fetches artist details on a background goroutine
func (s *spotifyService) FetchArtist(ctx context.Context, artistID string, callback func(*Artist, error)) {
	go func() {
		artist, err := s.GetArtist(ctx, artistID)
		callback(artist, err)
	}()
}

// GetAlbum fetches album details from Spotify API
func (s *spotifyService) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	var album Album
	if err := s.get(ctx, "get_album", "/albums/"+url.PathEscape(albumID), nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// GetPlaylist fetches a playlist with its first page of tracks
func (s *spotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := s.get(ctx, "get_playlist", "/playlists/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, err
	}

	// Drop local files and removed tracks, which come back as null
	entries := playlist.Tracks.Items[:0]
	for _, entry := range playlist.Tracks.Items {
		if entry.Track != nil && entry.Track.ID != "" {
			entries = append(entries, entry)
		}
	}
	playlist.Tracks.Items = entries

	return &playlist, nil
}

// PlayTracks starts playback on a background goroutine and reports the outcome
func (s *spotifyService) PlayTracks(ctx context.Context, startIndex int, uris []string, callback func(status string)) {
	go func() {
		callback(s.play(ctx, startIndex, uris))
	}()
}

// play issues PUT /me/player/play and returns an empty status on success
func (s *spotifyService) play(ctx context.Context, startIndex int, uris []string) string {
	token, err := s.ensureValidToken(ctx)
	if err != nil {
		return err.Error()
	}

	var apiErr spotifyErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(playRequest{
			URIs:   uris,
			Offset: playOffset{Position: startIndex},
		}).
		SetError(&apiErr).
		Put("/me/player/play")
	if err != nil {
		return err.Error()
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusAccepted:
		return ""
	}

	if apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return fmt.Sprintf("player returned status %d", resp.StatusCode())
}

// Health checks Spotify API health
func (s *spotifyService) Health(ctx context.Context) error {
	_, err := s.ensureValidToken(ctx)
	return err
}

// get performs an authenticated GET and decodes the JSON body into result
func (s *spotifyService) get(ctx context.Context, operation, path string, params map[string]string, result interface{}) error {
	token, err := s.ensureValidToken(ctx)
	if err != nil {
		return err
	}

	var apiErr spotifyErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		SetResult(result).
		SetError(&apiErr).
		Get(path)

	if err != nil {
		return &PlatformError{
			Platform:  "spotify",
			Operation: operation,
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() == http.StatusNotFound {
		return &PlatformError{
			Platform:  "spotify",
			Operation: operation,
			Message:   "resource not found",
			Status:    resp.StatusCode(),
		}
	}

	if resp.StatusCode() != http.StatusOK {
		message := apiErr.Error.Message
		if message == "" {
			message = fmt.Sprintf("API returned status %d", resp.StatusCode())
		}
		return &PlatformError{
			Platform:  "spotify",
			Operation: operation,
			Message:   message,
			Status:    resp.StatusCode(),
		}
	}

	return nil
}

// ensureValidToken returns a valid access token, refreshing it when needed
func (s *spotifyService) ensureValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	token, err := s.fetchToken(ctx)
	if err != nil {
		return "", &PlatformError{
			Platform:  "spotify",
			Operation: "auth",
			Message:   "failed to get access token",
			Err:       err,
		}
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Hour)
	}

	s.accessToken = token.AccessToken
	s.tokenExpiry = expiry.Add(-tokenExpiryMargin)

	slog.Info("Spotify access token refreshed", "expires_at", expiry)

	return s.accessToken, nil
}
