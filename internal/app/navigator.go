package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spotdesk/internal/services"
)

// DefaultStatusLogSize is how many status messages are kept
const DefaultStatusLogSize = 50

// Page is the content currently shown next to the search surface
type Page struct {
	Kind   string   `json:"kind"` // "album", "artist", "playlist" or empty
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Tracks []string `json:"tracks,omitempty"` // track URIs in play order
}

// StatusEntry is one reported status message
type StatusEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	IsError bool      `json:"is_error"`
}

// NavigationState is a copy of the navigator's state
type NavigationState struct {
	Page         Page          `json:"page"`
	SearchClosed int           `json:"search_closed"`
	Statuses     []StatusEntry `json:"statuses"`
}

// Navigator implements the application side of the search session: it opens
// album, artist and playlist pages and keeps a log of status messages.
type Navigator struct {
	catalog    services.CatalogService
	maxEntries int

	mu           sync.RWMutex
	page         Page
	searchClosed int
	statuses     []StatusEntry
}

// NewNavigator creates a navigator that loads album pages through catalog
func NewNavigator(catalog services.CatalogService, statusLogSize int) *Navigator {
	if statusLogSize <= 0 {
		statusLogSize = DefaultStatusLogSize
	}
	return &Navigator{
		catalog:    catalog,
		maxEntries: statusLogSize,
	}
}

// OpenArtist shows an artist page. The page fills in asynchronously.
func (n *Navigator) OpenArtist(id string) {
	n.setPage(Page{Kind: "artist", ID: id})
	slog.Info("Opened artist", "id", id)
}

// LoadAlbum fetches an album and shows it
func (n *Navigator) LoadAlbum(ctx context.Context, id string) error {
	album, err := n.catalog.GetAlbum(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load album %s: %w", id, err)
	}

	n.setPage(Page{Kind: "album", ID: album.ID, Name: album.Name})
	slog.Info("Loaded album", "id", album.ID, "name", album.Name)
	return nil
}

// LoadPlaylist shows an already fetched playlist
func (n *Navigator) LoadPlaylist(ctx context.Context, playlist *services.Playlist) {
	tracks := make([]string, 0, len(playlist.Tracks.Items))
	for _, entry := range playlist.Tracks.Items {
		if entry.Track != nil {
			tracks = append(tracks, "spotify:track:"+entry.Track.ID)
		}
	}

	n.setPage(Page{Kind: "playlist", ID: playlist.ID, Name: playlist.Name, Tracks: tracks})
	slog.Info("Loaded playlist", "id", playlist.ID, "tracks", len(tracks))
}

// CloseSearch dismisses the search surface
func (n *Navigator) CloseSearch() {
	n.mu.Lock()
	n.searchClosed++
	n.mu.Unlock()
}

// ReportStatus appends a message to the status log
func (n *Navigator) ReportStatus(message string, isError bool) {
	if isError {
		slog.Warn("Status", "message", message)
	} else {
		slog.Info("Status", "message", message)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.statuses = append(n.statuses, StatusEntry{Time: time.Now(), Message: message, IsError: isError})
	if over := len(n.statuses) - n.maxEntries; over > 0 {
		n.statuses = append([]StatusEntry(nil), n.statuses[over:]...)
	}
}

// State returns a copy of the navigation state
func (n *Navigator) State() NavigationState {
	n.mu.RLock()
	defer n.mu.RUnlock()

	page := n.page
	page.Tracks = append([]string(nil), n.page.Tracks...)

	return NavigationState{
		Page:         page,
		SearchClosed: n.searchClosed,
		Statuses:     append([]StatusEntry{}, n.statuses...),
	}
}

func (n *Navigator) setPage(page Page) {
	n.mu.Lock()
	n.page = page
	n.mu.Unlock()
}
