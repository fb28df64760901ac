//go:build integration

package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/models"
)

func TestMongoCrashRepository_Integration(t *testing.T) {
	mongoURL := os.Getenv("TEST_MONGODB_URL")
	if mongoURL == "" {
		t.Skip("Skipping MongoDB integration test - TEST_MONGODB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "spotdesk_test_" + time.Now().Format("20060102150405")
	db, err := models.NewDatabase(ctx, mongoURL, dbName)
	require.NoError(t, err)
	defer func() {
		_ = db.DB.Drop(context.Background())
		_ = db.Close(context.Background())
	}()

	require.NoError(t, db.CreateIndexes(ctx))
	require.NoError(t, db.Health(ctx))

	repo := NewMongoCrashRepository(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	newer := &models.CrashRecord{Timestamp: now, Message: "second", Stack: "goroutine 1"}
	older := &models.CrashRecord{Timestamp: now.Add(-48 * time.Hour), Message: "first"}
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	crashes, err := repo.FindAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, crashes, 2)
	assert.Equal(t, "first", crashes[0].Message)
	assert.Equal(t, "second", crashes[1].Message)

	latest, err := repo.FindAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "second", latest[0].Message)

	found, err := repo.FindByID(ctx, newer.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "goroutine 1", found.Stack)

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
