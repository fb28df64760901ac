package search

import (
	"log/slog"

	"spotdesk/internal/services"
)

// ResultBundle holds the raw per-category entities returned by the backend
type ResultBundle struct {
	Tracks    []services.Track
	Albums    []services.Album
	Artists   []services.Artist
	Playlists []services.Playlist
}

// bundleFromResults adapts a multi-category search response
func bundleFromResults(results *services.SearchResults) ResultBundle {
	if results == nil {
		return ResultBundle{}
	}
	return ResultBundle{
		Tracks:    results.Tracks,
		Albums:    results.Albums,
		Artists:   results.Artists,
		Playlists: results.Playlists,
	}
}

// Len returns the number of entities across all categories
func (b ResultBundle) Len() int {
	return len(b.Tracks) + len(b.Albums) + len(b.Artists) + len(b.Playlists)
}

// View is the aggregated view-model of one query: four ordered item lists
type View struct {
	lists map[Category][]Item
	index map[ItemKey]Item
}

// NewView creates an empty view
func NewView() *View {
	return &View{
		lists: make(map[Category][]Item, len(Categories)),
		index: make(map[ItemKey]Item),
	}
}

// Build maps every entity of the bundle to an item, keeping backend order.
// Categories are populated albums first, then artists, playlists and tracks.
func Build(bundle ResultBundle) *View {
	v := NewView()

	for i := range bundle.Albums {
		v.add(NewAlbumItem(&bundle.Albums[i]))
	}
	for i := range bundle.Artists {
		v.add(NewArtistItem(&bundle.Artists[i]))
	}
	for i := range bundle.Playlists {
		v.add(NewPlaylistItem(&bundle.Playlists[i]))
	}
	for i := range bundle.Tracks {
		v.add(NewTrackItem(&bundle.Tracks[i]))
	}

	return v
}

// add appends an item, skipping entities without an id
func (v *View) add(item Item) bool {
	key := item.Key()
	if key.ID == "" {
		slog.Warn("Skipping result without id", "category", key.Category.String(), "name", item.Name())
		return false
	}
	v.lists[key.Category] = append(v.lists[key.Category], item)
	// first occurrence wins lookups when the backend repeats an entity
	if _, exists := v.index[key]; !exists {
		v.index[key] = item
	}
	return true
}

// AppendArtist appends an artist delivered after the view was built
func (v *View) AppendArtist(item *ArtistItem) bool {
	return v.add(item)
}

// Patch replaces the cover of every item with the given key.
// It never inserts, removes or reorders items.
func (v *View) Patch(key ItemKey, ref ImageRef) bool {
	patched := false
	for _, item := range v.lists[key.Category] {
		if item.Key() == key {
			item.setCover(ref)
			patched = true
		}
	}
	return patched
}

// Find returns the item with the given key
func (v *View) Find(key ItemKey) (Item, bool) {
	item, ok := v.index[key]
	return item, ok
}

// Items returns the ordered items of a category
func (v *View) Items(category Category) []Item {
	items := v.lists[category]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Len returns the number of items in a category
func (v *View) Len(category Category) int {
	return len(v.lists[category])
}

// Total returns the number of items across all categories
func (v *View) Total() int {
	total := 0
	for _, items := range v.lists {
		total += len(items)
	}
	return total
}

// pendingCovers returns the keys and URLs of items still waiting for a cover
func (v *View) pendingCovers() []coverRequest {
	var requests []coverRequest
	for _, category := range Categories {
		for _, item := range v.lists[category] {
			if cover := item.Cover(); cover.State == ImagePending {
				requests = append(requests, coverRequest{key: item.Key(), url: cover.URL})
			}
		}
	}
	return requests
}

type coverRequest struct {
	key ItemKey
	url string
}
