package services

import (
	"context"
	"strconv"
)

// CatalogService defines the operations the client needs from the streaming backend
type CatalogService interface {
	// SearchMulti runs one text search across tracks, albums, artists and playlists
	SearchMulti(ctx context.Context, query string, limit int) (*SearchResults, error)

	// GetTrack fetches a single track by ID
	GetTrack(ctx context.Context, trackID string) (*Track, error)

	// GetArtist fetches a single artist by ID
	GetArtist(ctx context.Context, artistID string) (*Artist, error)

	// FetchArtist fetches an artist in the background and hands the result to callback.
	// The callback runs on a backend goroutine.
	FetchArtist(ctx context.Context, artistID string, callback func(*Artist, error))

	// GetAlbum fetches a single album by ID
	GetAlbum(ctx context.Context, albumID string) (*Album, error)

	// GetPlaylist fetches a full playlist, including its first page of tracks
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)

	// PlayTracks starts playback of uris at startIndex on the active device.
	// callback receives an empty status on success, or the backend's reason otherwise.
	PlayTracks(ctx context.Context, startIndex int, uris []string, callback func(status string))

	// Health checks that the backend can be reached and authenticated against
	Health(ctx context.Context) error
}

// SearchResults holds the independent result sequences of a multi-category search
type SearchResults struct {
	Tracks    []Track    `json:"tracks"`
	Albums    []Album    `json:"albums"`
	Artists   []Artist   `json:"artists"`
	Playlists []Playlist `json:"playlists"`
}

// Total returns the number of entities across all categories
func (r *SearchResults) Total() int {
	if r == nil {
		return 0
	}
	return len(r.Tracks) + len(r.Albums) + len(r.Artists) + len(r.Playlists)
}

// Image is a cover image variant
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArtistRef is the simplified artist object embedded in tracks and albums
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the simplified album object embedded in tracks
type AlbumRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track represents a track from the catalog
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	URI        string      `json:"uri"`
	Artists    []ArtistRef `json:"artists"`
	Album      AlbumRef    `json:"album"`
	DurationMs int         `json:"duration_ms"`
	Explicit   bool        `json:"explicit"`
	Popularity int         `json:"popularity"`
}

// ArtistName returns the primary artist name
func (t *Track) ArtistName() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// ArtistID returns the primary artist ID
func (t *Track) ArtistID() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].ID
}

// Album represents an album from the catalog
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	URI         string      `json:"uri"`
	Artists     []ArtistRef `json:"artists"`
	Images      []Image     `json:"images"`
	ReleaseDate string      `json:"release_date"`
	TotalTracks int         `json:"total_tracks"`
}

// ArtistName returns the primary artist name
func (a *Album) ArtistName() string {
	if len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0].Name
}

// Artist represents an artist from the catalog
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Genres     []string  `json:"genres"`
	Images     []Image   `json:"images"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
}

// Followers holds follower counts
type Followers struct {
	Total int `json:"total"`
}

// PlaylistOwner identifies the user owning a playlist
type PlaylistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a playlist from the catalog
type Playlist struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	URI           string         `json:"uri"`
	Description   string         `json:"description"`
	Owner         PlaylistOwner  `json:"owner"`
	Images        []Image        `json:"images"`
	Collaborative bool           `json:"collaborative"`
	SnapshotID    string         `json:"snapshot_id"`
	Tracks        PlaylistTracks `json:"tracks"`
}

// OwnerName returns the owner's display name, falling back to the owner ID
func (p *Playlist) OwnerName() string {
	if p.Owner.DisplayName != "" {
		return p.Owner.DisplayName
	}
	return p.Owner.ID
}

// PlaylistTracks is the track page of a playlist. Search results only carry Total.
type PlaylistTracks struct {
	Total int             `json:"total"`
	Items []PlaylistEntry `json:"items,omitempty"`
}

// PlaylistEntry is one row of a playlist
type PlaylistEntry struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// PickImageURL returns the URL of the smallest image at least minWidth wide.
// Images with unknown width are only used when nothing else qualifies.
func PickImageURL(images []Image, minWidth int) string {
	if len(images) == 0 {
		return ""
	}

	best := -1
	for i, img := range images {
		if img.URL == "" || img.Width < minWidth {
			continue
		}
		if best < 0 || img.Width < images[best].Width {
			best = i
		}
	}
	if best >= 0 {
		return images[best].URL
	}

	// Fall back to the first non-empty URL (largest, in catalog order)
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}

// PlatformError represents an error from the catalog backend
type PlatformError struct {
	Platform  string
	Operation string
	Message   string
	Status    int
	Err       error
}

func (e *PlatformError) Error() string {
	msg := e.Platform + " " + e.Operation + " failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Status != 0 {
		msg += " (status " + strconv.Itoa(e.Status) + ")"
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the backend answered 404
func (e *PlatformError) IsNotFound() bool {
	return e.Status == 404
}
