package search

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryInFlight is returned when a query is submitted while input is disabled
	ErrQueryInFlight = errors.New("a query is already in flight")

	// ErrItemNotFound is returned when selecting an item that is not in the live view
	ErrItemNotFound = errors.New("item not found in current results")

	// ErrInboxPanic is returned by Inbox.Do when the posted function panicked
	ErrInboxPanic = errors.New("inbox function panicked")
)

// FetchError is a failed resource or text search fetch
type FetchError struct {
	Category Category // CategoryNone for text searches
	ID       string
	Reason   string
	Err      error
}

func (e *FetchError) Error() string {
	target := "search"
	if e.Category != CategoryNone {
		target = e.Category.URI(e.ID)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed: %v", target, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: %s", target, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Status returns the one-line status message shown to the user
func (e *FetchError) Status() string {
	if e.Category == CategoryNone {
		reason := e.Reason
		if reason == "" && e.Err != nil {
			reason = e.Err.Error()
		}
		return "Search failed: " + reason
	}
	return "Failed to load " + e.Category.String()
}

// PlaybackError is a playback request the backend rejected
type PlaybackError struct {
	Reason string
}

func (e *PlaybackError) Error() string {
	return "playback failed: " + e.Reason
}

// Status returns the one-line status message shown to the user
func (e *PlaybackError) Status() string {
	return "Failed to play track: " + e.Reason
}

// NavigationError is a navigation request the application could not complete
type NavigationError struct {
	Target ItemKey
	Err    error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s failed: %v", e.Target, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Status returns the one-line status message shown to the user
func (e *NavigationError) Status() string {
	return "Failed to load " + e.Target.Category.String()
}
