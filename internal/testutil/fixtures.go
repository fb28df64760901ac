package testutil

import (
	"spotdesk/internal/services"
)

// Test catalog ids
const (
	TestAlbumID    = "5ht7ItJgpBH7W6vJ5BqpPr"
	TestArtistID   = "0kbYTNQb4Pb1rPbbaF0pT4"
	TestTrackID    = "T1"
	TestPlaylistID = "37i9dQZF1DXbITWG1ZJKYt"
	TestCoverURL   = "https://i.scdn.co/image/test-cover"
)

// TrackBuilder provides a fluent interface for creating test tracks
type TrackBuilder struct {
	track *services.Track
}

// NewTrackBuilder creates a new track builder with default values
func NewTrackBuilder() *TrackBuilder {
	return &TrackBuilder{
		track: &services.Track{
			ID:         TestTrackID,
			Name:       "So What",
			URI:        "spotify:track:" + TestTrackID,
			Artists:    []services.ArtistRef{{ID: TestArtistID, Name: "Miles Davis"}},
			Album:      services.AlbumRef{ID: TestAlbumID, Name: "Kind of Blue"},
			DurationMs: 562000,
		},
	}
}

// WithID sets the track ID
func (b *TrackBuilder) WithID(id string) *TrackBuilder {
	b.track.ID = id
	b.track.URI = "spotify:track:" + id
	return b
}

// WithName sets the track name
func (b *TrackBuilder) WithName(name string) *TrackBuilder {
	b.track.Name = name
	return b
}

// WithArtist sets the primary artist
func (b *TrackBuilder) WithArtist(id, name string) *TrackBuilder {
	b.track.Artists = []services.ArtistRef{{ID: id, Name: name}}
	return b
}

// WithCover sets the album cover of the track
func (b *TrackBuilder) WithCover(url string) *TrackBuilder {
	b.track.Album.Images = []services.Image{{URL: url, Width: 64, Height: 64}}
	return b
}

// Build returns the built track
func (b *TrackBuilder) Build() *services.Track {
	return b.track
}

// NewTestAlbum creates an album with one cover image
func NewTestAlbum(id, name string) *services.Album {
	return &services.Album{
		ID:      id,
		Name:    name,
		URI:     "spotify:album:" + id,
		Artists: []services.ArtistRef{{ID: TestArtistID, Name: "Miles Davis"}},
		Images:  []services.Image{{URL: TestCoverURL + "/" + id, Width: 64, Height: 64}},
	}
}

// NewTestArtist creates an artist without images
func NewTestArtist(id, name string) *services.Artist {
	return &services.Artist{
		ID:     id,
		Name:   name,
		URI:    "spotify:artist:" + id,
		Genres: []string{"jazz"},
	}
}

// NewTestPlaylist creates a playlist owned by Spotify
func NewTestPlaylist(id, name string, tracks ...*services.Track) *services.Playlist {
	playlist := &services.Playlist{
		ID:    id,
		Name:  name,
		URI:   "spotify:playlist:" + id,
		Owner: services.PlaylistOwner{ID: "spotify", DisplayName: "Spotify"},
	}
	for _, track := range tracks {
		playlist.Tracks.Items = append(playlist.Tracks.Items, services.PlaylistEntry{Track: track})
	}
	playlist.Tracks.Total = len(tracks)
	return playlist
}

// NewTestSearchResults creates results with entries in every category
func NewTestSearchResults() *services.SearchResults {
	return &services.SearchResults{
		Tracks: []services.Track{
			*NewTrackBuilder().WithID("t1").WithName("Take Five").Build(),
			*NewTrackBuilder().WithID("t2").WithName("Autumn Leaves").Build(),
		},
		Albums: []services.Album{
			*NewTestAlbum("al1", "Time Out"),
		},
		Artists: []services.Artist{
			*NewTestArtist("ar1", "Bill Evans"),
			*NewTestArtist("ar2", "Oscar Peterson"),
			*NewTestArtist("ar3", "Keith Jarrett"),
		},
		Playlists: []services.Playlist{
			*NewTestPlaylist("p1", "Jazz Piano Essentials"),
		},
	}
}
