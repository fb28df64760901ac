package search

import (
	"context"
	"fmt"

	"spotdesk/internal/services"
)

// Action is a navigation or playback step produced by selecting an item
type Action interface {
	Kind() string
}

// Play starts playback of URIs at StartIndex
type Play struct {
	StartIndex int
	URIs       []string
}

// LoadAlbum opens an album page
type LoadAlbum struct {
	ID string
}

// OpenArtist opens an artist page
type OpenArtist struct {
	ID string
}

// CloseSearch dismisses the search surface
type CloseSearch struct{}

// LoadPlaylist opens a fully fetched playlist
type LoadPlaylist struct {
	Playlist *services.Playlist
}

func (Play) Kind() string { return "play" }
func (LoadAlbum) Kind() string { return "load_album" }
func (OpenArtist) Kind() string { return "open_artist" }
func (CloseSearch) Kind() string { return "close_search" }
func (LoadPlaylist) Kind() string { return "load_playlist" }

// Router maps a selected item to the actions the application performs
type Router struct {
	catalog services.CatalogService
}

// NewRouter creates a new interaction router
func NewRouter(catalog services.CatalogService) *Router {
	return &Router{catalog: catalog}
}

// Route returns the actions for item. Playlists are fetched in full first,
// so a playlist route can fail with a *FetchError.
func (r *Router) Route(ctx context.Context, item Item) ([]Action, error) {
	key := item.Key()

	switch key.Category {
	case CategoryTrack:
		return []Action{Play{StartIndex: 0, URIs: []string{TrackURI(key.ID)}}}, nil

	case CategoryAlbum:
		return []Action{LoadAlbum{ID: key.ID}}, nil

	case CategoryArtist:
		return []Action{OpenArtist{ID: key.ID}, CloseSearch{}}, nil

	case CategoryPlaylist:
		playlist, err := r.catalog.GetPlaylist(ctx, key.ID)
		if err != nil {
			return nil, newFetchError(CategoryPlaylist, key.ID, err)
		}
		return []Action{LoadPlaylist{Playlist: playlist}}, nil
	}

	return nil, fmt.Errorf("no route for %s", key)
}
