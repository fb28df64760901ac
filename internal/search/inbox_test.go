package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/repositories"
)

// runInbox consumes the inbox until the test ends
func runInbox(t *testing.T, inbox *Inbox) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		inbox.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctx
}

func TestInbox_DrainRunsInOrder(t *testing.T) {
	inbox := NewInbox(nil, nil)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		inbox.Post(func() { order = append(order, i) })
	}
	// functions posted while draining run in the same drain
	inbox.Post(func() {
		inbox.Post(func() { order = append(order, 99) })
	})

	assert.Equal(t, 7, inbox.Drain())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, order)
	assert.Equal(t, 0, inbox.Drain())
}

func TestInbox_PostFromManyGoroutines(t *testing.T) {
	inbox := NewInbox(nil, nil)
	ctx := runInbox(t, inbox)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inbox.Post(func() { counter++ })
		}()
	}
	wg.Wait()

	var total int
	require.NoError(t, inbox.Do(ctx, func() { total = counter }))
	assert.Equal(t, 50, total)
}

func TestInbox_PanicIsRecordedAndLoopContinues(t *testing.T) {
	repo := repositories.NewMemoryCrashRepository(10)
	inbox := NewInbox(repositories.NewCrashRecorder(repo, "test"), nil)
	ctx := runInbox(t, inbox)

	err := inbox.Do(ctx, func() { panic("boom") })
	assert.ErrorIs(t, err, ErrInboxPanic)

	ran := false
	require.NoError(t, inbox.Do(ctx, func() { ran = true }))
	assert.True(t, ran)

	crashes, err := repo.FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, crashes, 1)
	assert.Equal(t, "boom", crashes[0].Message)
	assert.Contains(t, crashes[0].Stack, "goroutine")
}

func TestInbox_DoHonoursContext(t *testing.T) {
	// no consumer is running, so the function never completes
	inbox := NewInbox(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := inbox.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inbox.Drain())
}
