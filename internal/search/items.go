package search

import (
	"spotdesk/internal/services"
)

// coverWidth is the smallest image width requested for list thumbnails
const coverWidth = 64

// ImageState tracks where an item's cover is in its lifecycle
type ImageState int

const (
	ImageAbsent ImageState = iota
	ImagePending
	ImageResolved
)

// String returns the state name used in JSON snapshots
func (s ImageState) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageResolved:
		return "resolved"
	default:
		return "absent"
	}
}

// MarshalText encodes the state by name
func (s ImageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name; unknown names become ImageAbsent
func (s *ImageState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = ImagePending
	case "resolved":
		*s = ImageResolved
	default:
		*s = ImageAbsent
	}
	return nil
}

// ImageRef is an item's cover image
type ImageRef struct {
	URL   string     `json:"url,omitempty"`
	State ImageState `json:"state"`
	Data  []byte     `json:"data,omitempty"`
}

func newImageRef(url string) ImageRef {
	if url == "" {
		return ImageRef{State: ImageAbsent}
	}
	return ImageRef{URL: url, State: ImagePending}
}

// Resolved returns a copy of the reference carrying decoded image bytes
func (r ImageRef) Resolved(data []byte) ImageRef {
	return ImageRef{URL: r.URL, State: ImageResolved, Data: data}
}

// ItemKey identifies an item within a view
type ItemKey struct {
	Category Category
	ID       string
}

func (k ItemKey) String() string {
	return k.Category.URI(k.ID)
}

// Item is a single search result. It is implemented by TrackItem,
// AlbumItem, ArtistItem and PlaylistItem.
type Item interface {
	Key() ItemKey
	Name() string
	// Subtitle is the artist for tracks and albums, the owner for playlists
	// and empty for artists.
	Subtitle() string
	Cover() ImageRef

	setCover(ImageRef)
}

// base holds the fields every item shares
type base struct {
	id    string
	name  string
	cover ImageRef
}

func (b *base) Name() string { return b.name }
func (b *base) Cover() ImageRef { return b.cover }
func (b *base) setCover(r ImageRef) { b.cover = r }

// TrackItem is a track result
type TrackItem struct {
	base
	Artist   string
	ArtistID string
	AlbumID  string
}

// NewTrackItem converts a catalog track
func NewTrackItem(t *services.Track) *TrackItem {
	return &TrackItem{
		base: base{
			id:    t.ID,
			name:  t.Name,
			cover: newImageRef(services.PickImageURL(t.Album.Images, coverWidth)),
		},
		Artist:   t.ArtistName(),
		ArtistID: t.ArtistID(),
		AlbumID:  t.Album.ID,
	}
}

func (t *TrackItem) Key() ItemKey { return ItemKey{Category: CategoryTrack, ID: t.id} }
func (t *TrackItem) Subtitle() string { return t.Artist }

// URI returns the playback URI
func (t *TrackItem) URI() string { return TrackURI(t.id) }

// AlbumItem is an album result
type AlbumItem struct {
	base
	Artist string
}

// NewAlbumItem converts a catalog album
func NewAlbumItem(a *services.Album) *AlbumItem {
	return &AlbumItem{
		base: base{
			id:    a.ID,
			name:  a.Name,
			cover: newImageRef(services.PickImageURL(a.Images, coverWidth)),
		},
		Artist: a.ArtistName(),
	}
}

func (a *AlbumItem) Key() ItemKey { return ItemKey{Category: CategoryAlbum, ID: a.id} }
func (a *AlbumItem) Subtitle() string { return a.Artist }

// ArtistItem is an artist result
type ArtistItem struct {
	base
	Genres []string
}

// NewArtistItem converts a catalog artist
func NewArtistItem(a *services.Artist) *ArtistItem {
	return &ArtistItem{
		base: base{
			id:    a.ID,
			name:  a.Name,
			cover: newImageRef(services.PickImageURL(a.Images, coverWidth)),
		},
		Genres: a.Genres,
	}
}

func (a *ArtistItem) Key() ItemKey { return ItemKey{Category: CategoryArtist, ID: a.id} }
func (a *ArtistItem) Subtitle() string { return "" }

// PlaylistItem is a playlist result
type PlaylistItem struct {
	base
	Owner      string
	TrackCount int
}

// NewPlaylistItem converts a catalog playlist
func NewPlaylistItem(p *services.Playlist) *PlaylistItem {
	return &PlaylistItem{
		base: base{
			id:    p.ID,
			name:  p.Name,
			cover: newImageRef(services.PickImageURL(p.Images, coverWidth)),
		},
		Owner:      p.OwnerName(),
		TrackCount: p.Tracks.Total,
	}
}

func (p *PlaylistItem) Key() ItemKey { return ItemKey{Category: CategoryPlaylist, ID: p.id} }
func (p *PlaylistItem) Subtitle() string { return p.Owner }
