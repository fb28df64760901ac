package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/services"
	"spotdesk/internal/testutil"
)

func TestRouter_Route(t *testing.T) {
	ctx := context.Background()
	playlist := testutil.NewTestPlaylist("p1", "Focus", testutil.NewTrackBuilder().Build())

	catalog := new(testutil.MockCatalogService)
	catalog.On("GetPlaylist", mock.Anything, "p1").Return(playlist, nil)
	router := NewRouter(catalog)

	testCases := []struct {
		name     string
		item     Item
		expected []Action
	}{
		{
			name:     "track plays a single uri from the start",
			item:     NewTrackItem(testutil.NewTrackBuilder().WithID("T1").Build()),
			expected: []Action{Play{StartIndex: 0, URIs: []string{"spotify:track:T1"}}},
		},
		{
			name:     "album loads the album page",
			item:     NewAlbumItem(testutil.NewTestAlbum("al1", "Time Out")),
			expected: []Action{LoadAlbum{ID: "al1"}},
		},
		{
			name:     "artist opens the artist and closes search",
			item:     NewArtistItem(testutil.NewTestArtist("ar1", "Bill Evans")),
			expected: []Action{OpenArtist{ID: "ar1"}, CloseSearch{}},
		},
		{
			name:     "playlist is fetched in full",
			item:     NewPlaylistItem(testutil.NewTestPlaylist("p1", "Focus")),
			expected: []Action{LoadPlaylist{Playlist: playlist}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actions, err := router.Route(ctx, tc.item)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actions)
		})
	}
}

func TestRouter_PlaylistFetchFailure(t *testing.T) {
	catalog := new(testutil.MockCatalogService)
	catalog.On("GetPlaylist", mock.Anything, "gone").
		Return(nil, &services.PlatformError{Platform: "spotify", Operation: "get_playlist", Message: "resource not found", Status: 404})

	actions, err := NewRouter(catalog).Route(context.Background(), NewPlaylistItem(testutil.NewTestPlaylist("gone", "Gone")))

	assert.Nil(t, actions)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Failed to load playlist", fetchErr.Status())
}

func TestActionKinds(t *testing.T) {
	assert.Equal(t, "play", Play{}.Kind())
	assert.Equal(t, "load_album", LoadAlbum{}.Kind())
	assert.Equal(t, "open_artist", OpenArtist{}.Kind())
	assert.Equal(t, "close_search", CloseSearch{}.Kind())
	assert.Equal(t, "load_playlist", LoadPlaylist{}.Kind())
}
