package covers

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/cache"
	"spotdesk/internal/testutil"
)

// encodeTestImage returns a solid PNG of the given size
func encodeTestImage(t *testing.T, width, height int) []byte {
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, imaging.Encode(buf, img, imaging.PNG))
	return buf.Bytes()
}

func newCoverServer(t *testing.T, body []byte) *testutil.MockHTTPServer {
	server := testutil.NewMockHTTPServer()
	t.Cleanup(server.Close)

	server.On("/image/cover", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	})
	server.On("/image/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	})
	return server
}

func TestScale(t *testing.T) {
	testCases := []struct {
		name           string
		width, height  int
		target         int
		expectedWidth  int
		expectedHeight int
	}{
		{name: "square cover shrinks", width: 640, height: 640, target: 64, expectedWidth: 64, expectedHeight: 64},
		{name: "aspect ratio kept", width: 300, height: 150, target: 64, expectedWidth: 128, expectedHeight: 64},
		{name: "small cover untouched", width: 32, height: 32, target: 64, expectedWidth: 32, expectedHeight: 32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scaled, err := Scale(encodeTestImage(t, tc.width, tc.height), tc.target)
			require.NoError(t, err)

			img, err := imaging.Decode(bytes.NewReader(scaled))
			require.NoError(t, err)
			assert.Equal(t, tc.expectedWidth, img.Bounds().Dx())
			assert.Equal(t, tc.expectedHeight, img.Bounds().Dy())
		})
	}
}

func TestScale_InvalidData(t *testing.T) {
	_, err := Scale([]byte("definitely not a jpeg"), 64)
	assert.Error(t, err)
}

func TestResolver_FetchScalesAndCaches(t *testing.T) {
	ctx := context.Background()
	server := newCoverServer(t, encodeTestImage(t, 300, 300))
	store := cache.NewMemoryCache(10)
	resolver := NewResolver(store, Options{Height: 64})

	url := server.URL() + "/image/cover"
	data, err := resolver.Fetch(ctx, url)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dy())

	again, err := resolver.Fetch(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, data, again)
	assert.Equal(t, 1, server.Hits("/image/cover"))

	exists, err := store.Exists(ctx, "cover:64:"+url)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResolver_ZeroHeightKeepsOriginal(t *testing.T) {
	original := encodeTestImage(t, 100, 100)
	server := newCoverServer(t, original)
	resolver := NewResolver(cache.NewMemoryCache(10), Options{Height: 0})

	data, err := resolver.Fetch(context.Background(), server.URL()+"/image/cover")
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestResolver_Errors(t *testing.T) {
	server := newCoverServer(t, nil)
	store := cache.NewMemoryCache(10)
	resolver := NewResolver(store, Options{Height: 64, Timeout: time.Second})

	_, err := resolver.Fetch(context.Background(), server.URL()+"/image/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = resolver.Fetch(context.Background(), server.URL()+"/image/broken")
	assert.ErrorContains(t, err, "decode")

	assert.Equal(t, 0, store.Len())
}

func TestResolver_ResolveCallsBack(t *testing.T) {
	server := newCoverServer(t, encodeTestImage(t, 64, 64))
	resolver := NewResolver(cache.NewMemoryCache(10), Options{Height: 64})

	done := make(chan error, 1)
	resolver.Resolve(context.Background(), server.URL()+"/image/cover", func(data []byte, err error) {
		if err == nil && len(data) == 0 {
			err = assert.AnError
		}
		done <- err
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cover callback never fired")
	}
}
