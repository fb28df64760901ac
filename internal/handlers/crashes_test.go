package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"spotdesk/internal/models"
	"spotdesk/internal/repositories"
	"spotdesk/internal/testutil"
)

type crashListResponse struct {
	Items []CrashView `json:"items"`
	Count int         `json:"count"`
}

func newCrashRouter(t *testing.T, repo repositories.CrashRepository) *testutil.HTTPTestHelper {
	helper := testutil.NewHTTPTestHelper(t)
	router := gin.New()
	RegisterRoutes(router, Handlers{
		Crashes: NewCrashHandler(repo),
		Admin:   NewAdminHandler(repo, nil),
	}, "")
	helper.SetRouter(router)
	return helper
}

func seedCrashes(t *testing.T, repo repositories.CrashRepository) (older, newer *models.CrashRecord) {
	ctx := context.Background()
	newer = models.NewCrashRecord("index out of range", "goroutine 7 [running]:")
	older = models.NewCrashRecord("nil map write", "")
	older.Timestamp = newer.Timestamp.Add(-time.Hour)

	// saved newest first to check ordering
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))
	return older, newer
}

func TestCrashHandler_ListOldestFirst(t *testing.T) {
	repo := repositories.NewMemoryCrashRepository(10)
	older, newer := seedCrashes(t, repo)
	helper := newCrashRouter(t, repo)

	var body crashListResponse
	helper.AssertJSONResponse(helper.GetJSON("/api/v1/crashes"), http.StatusOK, &body)

	require.Equal(t, 2, body.Count)
	assert.Equal(t, older.Message, body.Items[0].Message)
	assert.Equal(t, newer.Message, body.Items[1].Message)
	assert.Contains(t, body.Items[1].Report, "goroutine 7 [running]:")

	// a limit keeps the newest records
	helper.AssertJSONResponse(helper.GetJSON("/api/v1/crashes?limit=1"), http.StatusOK, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, newer.Message, body.Items[0].Message)

	helper.AssertErrorResponse(helper.GetJSON("/api/v1/crashes?limit=abc"), http.StatusBadRequest, "limit")
}

func TestCrashHandler_Get(t *testing.T) {
	repo := repositories.NewMemoryCrashRepository(10)
	older, _ := seedCrashes(t, repo)
	helper := newCrashRouter(t, repo)

	var view CrashView
	helper.AssertJSONResponse(helper.GetJSON("/api/v1/crashes/"+older.ID.Hex()), http.StatusOK, &view)
	assert.Equal(t, "nil map write", view.Message)

	helper.AssertErrorResponse(helper.GetJSON("/api/v1/crashes/not-an-id"), http.StatusBadRequest, "Invalid crash ID")
	helper.AssertErrorResponse(helper.GetJSON("/api/v1/crashes/"+primitive.NewObjectID().Hex()), http.StatusNotFound, "not found")
}

func TestCrashHandler_Prune(t *testing.T) {
	repo := repositories.NewMemoryCrashRepository(10)
	seedCrashes(t, repo)
	helper := newCrashRouter(t, repo)

	var body map[string]int64
	helper.AssertJSONResponse(helper.Delete("/api/v1/crashes?older_than=30m"), http.StatusOK, &body)
	assert.Equal(t, int64(1), body["deleted"])

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	helper.AssertErrorResponse(helper.Delete("/api/v1/crashes?older_than=soon"), http.StatusBadRequest, "older_than")
}

func TestCrashHandler_RepositoryFailure(t *testing.T) {
	repo := new(testutil.MockCrashRepository)
	repo.On("FindAll", mock.Anything, defaultCrashListLimit).Return(nil, assert.AnError)
	helper := newCrashRouter(t, repo)

	helper.AssertErrorResponse(helper.GetJSON("/api/v1/crashes"), http.StatusInternalServerError, "Failed to load crash log")
	repo.AssertExpectations(t)
}

func TestAdminHandler_MemoryBackend(t *testing.T) {
	repo := repositories.NewMemoryCrashRepository(10)
	seedCrashes(t, repo)
	helper := newCrashRouter(t, repo)

	var stats DatabaseStats
	helper.AssertJSONResponse(helper.GetJSON("/api/v1/admin/db-stats"), http.StatusOK, &stats)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, int64(2), stats.CrashRecords)
	assert.Empty(t, stats.Collections)
}

func TestAsInt64(t *testing.T) {
	n, ok := asInt64(int32(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	n, ok = asInt64(float64(2048))
	assert.True(t, ok)
	assert.Equal(t, int64(2048), n)

	_, ok = asInt64("12")
	assert.False(t, ok)

	assert.Equal(t, 1.0, megabytes(int64(1024*1024)))
}
