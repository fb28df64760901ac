package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spotdesk/internal/services"
)

// ArtistCallback receives the result of an asynchronous artist fetch
type ArtistCallback func(*services.Artist, error)

// DispatchResult is the synchronous outcome of a resource dispatch
type DispatchResult struct {
	Bundle ResultBundle
	// Category is the tab to select, set even when the fetch is still pending
	Category Category
	// Pending is true when the entity will arrive through the artist callback
	Pending bool
}

// Dispatcher fetches single resources by category
type Dispatcher struct {
	catalog services.CatalogService
}

// NewDispatcher creates a new resource dispatcher
func NewDispatcher(catalog services.CatalogService) *Dispatcher {
	return &Dispatcher{catalog: catalog}
}

// Dispatch fetches the resource named by id. Tracks, albums and playlists are
// fetched synchronously; artists are fetched in the background and delivered
// to onArtist, and the result is returned with Pending set.
func (d *Dispatcher) Dispatch(ctx context.Context, id ParsedIdentifier, onArtist ArtistCallback) (DispatchResult, error) {
	result := DispatchResult{Category: id.Category}

	switch id.Category {
	case CategoryTrack:
		track, err := d.catalog.GetTrack(ctx, id.ID)
		if err != nil {
			return result, newFetchError(id.Category, id.ID, err)
		}
		result.Bundle.Tracks = []services.Track{*track}

	case CategoryAlbum:
		album, err := d.catalog.GetAlbum(ctx, id.ID)
		if err != nil {
			return result, newFetchError(id.Category, id.ID, err)
		}
		result.Bundle.Albums = []services.Album{*album}

	case CategoryPlaylist:
		playlist, err := d.catalog.GetPlaylist(ctx, id.ID)
		if err != nil {
			return result, newFetchError(id.Category, id.ID, err)
		}
		result.Bundle.Playlists = []services.Playlist{*playlist}

	case CategoryArtist:
		// the fetch outlives the caller's request
		d.catalog.FetchArtist(context.WithoutCancel(ctx), id.ID, func(artist *services.Artist, err error) {
			if err != nil {
				err = newFetchError(CategoryArtist, id.ID, err)
			}
			onArtist(artist, err)
		})
		result.Pending = true

	default:
		return result, fmt.Errorf("cannot dispatch %q: not a resource identifier", id.Text)
	}

	slog.Debug("Resource dispatched", "category", id.Category.String(), "id", id.ID, "pending", result.Pending)
	return result, nil
}

// SearchText runs a multi-category text search
func (d *Dispatcher) SearchText(ctx context.Context, text string, limit int) (ResultBundle, error) {
	results, err := d.catalog.SearchMulti(ctx, text, limit)
	if err != nil {
		return ResultBundle{}, newFetchError(CategoryNone, "", err)
	}
	return bundleFromResults(results), nil
}

// newFetchError wraps a backend failure, lifting the platform message as reason
func newFetchError(category Category, id string, err error) *FetchError {
	fetchErr := &FetchError{Category: category, ID: id, Err: err}

	var platformErr *services.PlatformError
	if errors.As(err, &platformErr) {
		fetchErr.Reason = platformErr.Message
	} else if err != nil {
		fetchErr.Reason = err.Error()
	}

	return fetchErr
}
