//go:build integration

package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kind of Blue, and So What from it
const (
	liveAlbumID = "1weenld61qoidwYuZ1GESA"
	liveTrackID = "4vLYewWIvqHfKtJDk8c8tq"
)

func liveSpotify(t *testing.T) CatalogService {
	clientID := os.Getenv("TEST_SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("TEST_SPOTIFY_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		t.Skip("Skipping Spotify integration tests - TEST_SPOTIFY_CLIENT_ID and TEST_SPOTIFY_CLIENT_SECRET not set")
	}
	return NewSpotifyService(SpotifyOptions{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Timeout:      10 * time.Second,
		RetryCount:   1,
	})
}

func TestSpotifyServiceIntegration(t *testing.T) {
	service := liveSpotify(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("health", func(t *testing.T) {
		require.NoError(t, service.Health(ctx))
	})

	t.Run("search returns every category", func(t *testing.T) {
		results, err := service.SearchMulti(ctx, "jazz piano", 5)
		require.NoError(t, err)
		assert.NotEmpty(t, results.Tracks)
		assert.NotEmpty(t, results.Albums)
		assert.NotEmpty(t, results.Artists)
		assert.NotEmpty(t, results.Playlists)
	})

	t.Run("get album", func(t *testing.T) {
		album, err := service.GetAlbum(ctx, liveAlbumID)
		require.NoError(t, err)
		assert.Equal(t, liveAlbumID, album.ID)
		assert.NotEmpty(t, PickImageURL(album.Images, 64))
	})

	t.Run("get track", func(t *testing.T) {
		track, err := service.GetTrack(ctx, liveTrackID)
		require.NoError(t, err)
		assert.Equal(t, liveTrackID, track.ID)
	})

	t.Run("unknown album is not found", func(t *testing.T) {
		_, err := service.GetAlbum(ctx, "0000000000000000000000")
		require.Error(t, err)
		var platformErr *PlatformError
		require.ErrorAs(t, err, &platformErr)
		assert.True(t, platformErr.IsNotFound() || platformErr.Status == 400)
	})
}
