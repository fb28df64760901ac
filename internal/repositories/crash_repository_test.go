package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/models"
)

func TestMemoryCrashRepository_SaveAndFindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(10)

	newer := &models.CrashRecord{Timestamp: time.Unix(2000, 0).UTC(), Message: "second"}
	older := &models.CrashRecord{Timestamp: time.Unix(1000, 0).UTC(), Message: "first"}

	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))
	assert.False(t, newer.ID.IsZero())
	assert.Equal(t, models.CurrentSchemaVersion, older.SchemaVersion)

	crashes, err := repo.FindAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, crashes, 2)
	assert.Equal(t, "first", crashes[0].Message)
	assert.Equal(t, "second", crashes[1].Message)

	limited, err := repo.FindAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "second", limited[0].Message)
}

func TestMemoryCrashRepository_FindAllKeepsLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(10)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Save(ctx, &models.CrashRecord{
			Timestamp: time.Unix(int64(i*100), 0),
			Message:   string(rune('a' + i - 1)),
		}))
	}

	crashes, err := repo.FindAll(ctx, 3)
	require.NoError(t, err)
	require.Len(t, crashes, 3)
	assert.Equal(t, "c", crashes[0].Message)
	assert.Equal(t, "d", crashes[1].Message)
	assert.Equal(t, "e", crashes[2].Message)
}

func TestMemoryCrashRepository_Capacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(2)

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Save(ctx, &models.CrashRecord{
			Timestamp: time.Unix(int64(i), 0),
			Message:   string(rune('a' + i - 1)),
		}))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	crashes, err := repo.FindAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", crashes[0].Message)
	assert.Equal(t, "c", crashes[1].Message)
}

func TestMemoryCrashRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(10)

	crash := models.NewCrashRecord("boom", "stack")
	require.NoError(t, repo.Save(ctx, crash))

	found, err := repo.FindByID(ctx, crash.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "boom", found.Message)

	missing, err := repo.FindByID(ctx, "507f1f77bcf86cd799439011")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.Error(t, err)
}

func TestMemoryCrashRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(10)

	require.NoError(t, repo.Save(ctx, &models.CrashRecord{Timestamp: time.Unix(100, 0)}))
	require.NoError(t, repo.Save(ctx, &models.CrashRecord{Timestamp: time.Unix(200, 0)}))
	require.NoError(t, repo.Save(ctx, &models.CrashRecord{Timestamp: time.Unix(300, 0)}))

	deleted, err := repo.DeleteOlderThan(ctx, time.Unix(250, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, _ := repo.Count(ctx)
	assert.Equal(t, int64(1), count)
}

func TestCrashRecorder_RecordCrash(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCrashRepository(10)
	recorder := NewCrashRecorder(repo, "v1.2.3")

	recorder.RecordCrash(ctx, "runtime error: invalid memory address", "goroutine 9 [running]:")

	crashes, err := repo.FindAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, crashes, 1)
	assert.Equal(t, "runtime error: invalid memory address", crashes[0].Message)
	assert.Equal(t, "goroutine 9 [running]:", crashes[0].Stack)
	assert.Equal(t, "v1.2.3", crashes[0].Build)
}
