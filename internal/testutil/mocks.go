package testutil

import (
	"context"
	"time"

	"spotdesk/internal/models"
	"spotdesk/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of CatalogService for testing.
// FetchArtist and PlayTracks only record the call; use .Run to capture or
// invoke the callback.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) SearchMulti(ctx context.Context, query string, limit int) (*services.SearchResults, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResults), args.Error(1)
}

func (m *MockCatalogService) GetTrack(ctx context.Context, trackID string) (*services.Track, error) {
	args := m.Called(ctx, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Track), args.Error(1)
}

func (m *MockCatalogService) GetArtist(ctx context.Context, artistID string) (*services.Artist, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Artist), args.Error(1)
}

func (m *MockCatalogService) FetchArtist(ctx context.Context, artistID string, callback func(*services.Artist, error)) {
	m.Called(ctx, artistID, callback)
}

func (m *MockCatalogService) GetAlbum(ctx context.Context, albumID string) (*services.Album, error) {
	args := m.Called(ctx, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Album), args.Error(1)
}

func (m *MockCatalogService) GetPlaylist(ctx context.Context, playlistID string) (*services.Playlist, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Playlist), args.Error(1)
}

func (m *MockCatalogService) PlayTracks(ctx context.Context, startIndex int, uris []string, callback func(status string)) {
	m.Called(ctx, startIndex, uris, callback)
}

func (m *MockCatalogService) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNavigator is a mock implementation of the session's Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) OpenArtist(id string) {
	m.Called(id)
}

func (m *MockNavigator) LoadAlbum(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNavigator) LoadPlaylist(ctx context.Context, playlist *services.Playlist) {
	m.Called(ctx, playlist)
}

func (m *MockNavigator) CloseSearch() {
	m.Called()
}

func (m *MockNavigator) ReportStatus(message string, isError bool) {
	m.Called(message, isError)
}

// MockCoverResolver is a mock implementation of CoverResolver
type MockCoverResolver struct {
	mock.Mock
}

func (m *MockCoverResolver) Resolve(ctx context.Context, url string, callback func(data []byte, err error)) {
	m.Called(ctx, url, callback)
}

// MockCrashRepository is a mock implementation of CrashRepository
type MockCrashRepository struct {
	mock.Mock
}

func (m *MockCrashRepository) Save(ctx context.Context, crash *models.CrashRecord) error {
	args := m.Called(ctx, crash)
	return args.Error(0)
}

func (m *MockCrashRepository) FindAll(ctx context.Context, limit int) ([]*models.CrashRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CrashRecord), args.Error(1)
}

func (m *MockCrashRepository) FindByID(ctx context.Context, id string) (*models.CrashRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CrashRecord), args.Error(1)
}

func (m *MockCrashRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCrashRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Helper functions for common mock setups

// ExpectGetAlbum sets up a GetAlbum expectation
func ExpectGetAlbum(m *MockCatalogService, albumID string, album *services.Album, err error) {
	m.On("GetAlbum", mock.Anything, albumID).Return(album, err)
}

// ExpectSearchMulti sets up a SearchMulti expectation for any limit
func ExpectSearchMulti(m *MockCatalogService, query string, results *services.SearchResults, err error) {
	m.On("SearchMulti", mock.Anything, query, mock.Anything).Return(results, err)
}

// ExpectAnyStatus accepts every ReportStatus call
func ExpectAnyStatus(m *MockNavigator) {
	m.On("ReportStatus", mock.Anything, mock.Anything).Maybe()
}

// CaptureArtistCallback makes FetchArtist send its callback on dst instead of fetching
func CaptureArtistCallback(m *MockCatalogService, artistID string, dst chan<- func(*services.Artist, error)) {
	m.On("FetchArtist", mock.Anything, artistID, mock.Anything).Run(func(args mock.Arguments) {
		dst <- args.Get(2).(func(*services.Artist, error))
	})
}
