package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// CrashRecorder stores panics recovered from the inbox consumer
type CrashRecorder interface {
	RecordCrash(ctx context.Context, message, stack string)
}

// Inbox is a single-consumer queue of functions. Every mutation of session
// state runs on its consumer, one function at a time, in posting order.
type Inbox struct {
	mu      sync.Mutex
	queue   []func()
	notify  chan struct{}
	turn    sync.Mutex // serializes consumers
	crashes CrashRecorder
	logger  *slog.Logger
}

// NewInbox creates an inbox. crashes may be nil.
func NewInbox(crashes CrashRecorder, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		notify:  make(chan struct{}, 1),
		crashes: crashes,
		logger:  logger,
	}
}

// Post queues fn. It is safe to call from any goroutine.
func (i *Inbox) Post(fn func()) {
	i.mu.Lock()
	i.queue = append(i.queue, fn)
	i.mu.Unlock()

	select {
	case i.notify <- struct{}{}:
	default:
	}
}

// Run consumes posted functions until ctx is done
func (i *Inbox) Run(ctx context.Context) {
	for {
		i.Drain()

		select {
		case <-ctx.Done():
			return
		case <-i.notify:
		}
	}
}

// Drain runs every queued function, including ones posted while draining
func (i *Inbox) Drain() int {
	ran := 0
	for i.runNext() {
		ran++
	}
	return ran
}

// Do posts fn and waits until it has run. It requires a running consumer
// and must not be called from inside a posted function.
func (i *Inbox) Do(ctx context.Context, fn func()) error {
	done := make(chan bool, 1)
	i.Post(func() {
		completed := false
		defer func() { done <- completed }()
		fn()
		completed = true
	})

	select {
	case completed := <-done:
		if !completed {
			return ErrInboxPanic
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runNext pops and runs one function. The turn lock spans both so that
// concurrent consumers still run functions in posting order.
func (i *Inbox) runNext() bool {
	i.turn.Lock()
	defer i.turn.Unlock()

	fn, ok := i.next()
	if !ok {
		return false
	}
	i.execute(fn)
	return true
}

func (i *Inbox) next() (func(), bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.queue) == 0 {
		return nil, false
	}
	fn := i.queue[0]
	i.queue[0] = nil
	i.queue = i.queue[1:]
	return fn, true
}

// execute runs fn, recovering and recording a panic so the loop survives
func (i *Inbox) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			message := fmt.Sprint(r)
			i.logger.Error("Recovered panic in inbox", "panic", message)
			if i.crashes != nil {
				i.crashes.RecordCrash(context.Background(), message, stack)
			}
		}
	}()

	fn()
}
