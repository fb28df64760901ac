package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"spotdesk/internal/services"
)

// Navigator is the application the session drives
type Navigator interface {
	OpenArtist(id string)
	LoadAlbum(ctx context.Context, id string) error
	LoadPlaylist(ctx context.Context, playlist *services.Playlist)
	CloseSearch()
	ReportStatus(message string, isError bool)
}

// CoverResolver fetches cover art in the background. callback runs on a
// resolver goroutine.
type CoverResolver interface {
	Resolve(ctx context.Context, url string, callback func(data []byte, err error))
}

// Status is the last one-line message reported to the user
type Status struct {
	Message string `json:"message"`
	IsError bool   `json:"is_error"`
}

// SessionOptions configures a Session
type SessionOptions struct {
	Limit  int
	Covers CoverResolver
	Logger *slog.Logger
}

// Session owns the state of the search surface. State is only mutated on the
// inbox consumer; Snapshot may be called from any goroutine.
type Session struct {
	inbox      *Inbox
	dispatcher *Dispatcher
	router     *Router
	catalog    services.CatalogService
	navigator  Navigator
	covers     CoverResolver
	logger     *slog.Logger

	limit        atomic.Int64
	inputEnabled atomic.Bool

	mu         sync.RWMutex
	generation uint64
	queryID    string
	query      string
	view       *View
	current    Category
	open       bool
	status     Status
}

// NewSession creates a new search session
func NewSession(catalog services.CatalogService, navigator Navigator, inbox *Inbox, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		inbox:      inbox,
		dispatcher: NewDispatcher(catalog),
		router:     NewRouter(catalog),
		catalog:    catalog,
		navigator:  navigator,
		covers:     opts.Covers,
		logger:     logger,
		view:       NewView(),
	}
	s.limit.Store(int64(opts.Limit))
	s.inputEnabled.Store(true)
	return s
}

// SetLimit changes the page size of later text searches. Safe from any goroutine.
func (s *Session) SetLimit(limit int) {
	s.limit.Store(int64(limit))
}

// Submit runs a query. The synchronous phase completes before Submit returns;
// an artist fetch and cover art arrive later through the inbox. Fetch failures
// are reported through the navigator, not returned.
func (s *Session) Submit(ctx context.Context, raw string) error {
	if !s.inputEnabled.CompareAndSwap(true, false) {
		return ErrQueryInFlight
	}

	return s.inbox.Do(ctx, func() {
		defer s.inputEnabled.Store(true)
		s.runQuery(ctx, raw)
	})
}

// Select routes the item with the given key in the live view
func (s *Session) Select(ctx context.Context, category Category, id string) error {
	found := true
	err := s.inbox.Do(ctx, func() {
		item, ok := s.view.Find(ItemKey{Category: category, ID: id})
		if !ok {
			found = false
			return
		}
		s.selectItem(ctx, item)
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrItemNotFound
	}
	return nil
}

// SetCategory switches the current tab
func (s *Session) SetCategory(ctx context.Context, category Category) error {
	return s.inbox.Do(ctx, func() {
		s.mu.Lock()
		s.current = category
		s.mu.Unlock()
	})
}

// Open shows the search surface
func (s *Session) Open(ctx context.Context) error {
	return s.inbox.Do(ctx, func() {
		s.mu.Lock()
		s.open = true
		s.mu.Unlock()
	})
}

func (s *Session) runQuery(ctx context.Context, raw string) {
	parsed := Parse(raw)

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.queryID = uuid.NewString()
	s.query = raw
	s.view = NewView()
	s.open = true
	s.status = Status{}
	logger := s.logger.With("query_id", s.queryID, "generation", generation)
	s.mu.Unlock()

	var view *View
	if parsed.IsResource() {
		s.mu.Lock()
		s.current = parsed.Category
		s.mu.Unlock()

		logger.Info("Dispatching resource", "category", parsed.Category.String(), "id", parsed.ID)

		result, err := s.dispatcher.Dispatch(ctx, parsed, s.artistCallback(generation))
		if err != nil {
			s.fail(logger, err)
			return
		}
		view = Build(result.Bundle)
	} else {
		logger.Info("Searching", "query", parsed.Text)

		bundle, err := s.dispatcher.SearchText(ctx, parsed.Text, int(s.limit.Load()))
		if err != nil {
			s.fail(logger, err)
			return
		}
		view = Build(bundle)
	}

	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	logger.Debug("View built",
		"albums", view.Len(CategoryAlbum),
		"artists", view.Len(CategoryArtist),
		"playlists", view.Len(CategoryPlaylist),
		"tracks", view.Len(CategoryTrack))

	s.requestCovers(generation, view.pendingCovers())
}

// artistCallback posts an artist result back into the inbox tagged with generation
func (s *Session) artistCallback(generation uint64) ArtistCallback {
	return func(artist *services.Artist, err error) {
		s.inbox.Post(func() {
			s.applyArtist(generation, artist, err)
		})
	}
}

func (s *Session) applyArtist(generation uint64, artist *services.Artist, err error) {
	if generation != s.generation {
		s.logger.Debug("Dropping stale artist result", "generation", generation, "live_generation", s.generation, "error", err)
		return
	}

	if err != nil {
		s.fail(s.logger.With("generation", generation), err)
		return
	}

	item := NewArtistItem(artist)
	s.mu.Lock()
	added := s.view.AppendArtist(item)
	s.mu.Unlock()

	if added {
		s.requestCovers(generation, []coverRequest{{key: item.Key(), url: item.Cover().URL}})
	}
}

func (s *Session) requestCovers(generation uint64, requests []coverRequest) {
	if s.covers == nil {
		return
	}

	ctx := context.Background()
	for _, req := range requests {
		req := req
		if req.url == "" {
			continue
		}
		s.covers.Resolve(ctx, req.url, func(data []byte, err error) {
			s.inbox.Post(func() {
				s.applyCover(generation, req, data, err)
			})
		})
	}
}

func (s *Session) applyCover(generation uint64, req coverRequest, data []byte, err error) {
	if generation != s.generation {
		return
	}

	ref := ImageRef{URL: req.url, State: ImageAbsent}
	if err != nil {
		s.logger.Debug("Cover unavailable", "key", req.key.String(), "url", req.url, "error", err)
	} else {
		ref = ref.Resolved(data)
	}

	s.mu.Lock()
	s.view.Patch(req.key, ref)
	s.mu.Unlock()
}

func (s *Session) selectItem(ctx context.Context, item Item) {
	key := item.Key()
	logger := s.logger.With("category", key.Category.String(), "id", key.ID)

	actions, err := s.router.Route(ctx, item)
	if err != nil {
		s.fail(logger, err)
		return
	}

	for _, action := range actions {
		logger.Debug("Performing action", "action", action.Kind())

		switch a := action.(type) {
		case Play:
			s.catalog.PlayTracks(context.WithoutCancel(ctx), a.StartIndex, a.URIs, func(status string) {
				s.inbox.Post(func() {
					if status != "" {
						s.fail(logger, &PlaybackError{Reason: status})
						return
					}
					logger.Info("Playback started", "uris", a.URIs)
				})
			})

		case LoadAlbum:
			if err := s.navigator.LoadAlbum(ctx, a.ID); err != nil {
				s.fail(logger, &NavigationError{Target: key, Err: err})
			}

		case OpenArtist:
			s.navigator.OpenArtist(a.ID)

		case CloseSearch:
			s.mu.Lock()
			s.open = false
			s.mu.Unlock()
			s.navigator.CloseSearch()

		case LoadPlaylist:
			s.navigator.LoadPlaylist(ctx, a.Playlist)
		}
	}
}

// statusError is implemented by errors that carry a user facing message
type statusError interface {
	Status() string
}

// fail reports err as an error status
func (s *Session) fail(logger *slog.Logger, err error) {
	message := "Search failed: " + err.Error()
	var se statusError
	if errors.As(err, &se) {
		message = se.Status()
	}

	logger.Warn("Request failed", "error", err)
	s.report(message, true)
}

func (s *Session) report(message string, isError bool) {
	s.mu.Lock()
	s.status = Status{Message: message, IsError: isError}
	s.mu.Unlock()

	s.navigator.ReportStatus(message, isError)
}

// ItemSnapshot is a read-only copy of one item
type ItemSnapshot struct {
	Category   Category `json:"category"`
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Cover      ImageRef `json:"cover"`
	ArtistID   string   `json:"artist_id,omitempty"`
	AlbumID    string   `json:"album_id,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	TrackCount int      `json:"track_count,omitempty"`
}

// Snapshot is a consistent copy of the session state
type Snapshot struct {
	Generation   uint64         `json:"generation"`
	QueryID      string         `json:"query_id,omitempty"`
	Query        string         `json:"query"`
	Category     Category       `json:"category"`
	InputEnabled bool           `json:"input_enabled"`
	Open         bool           `json:"open"`
	Status       Status         `json:"status"`
	Albums       []ItemSnapshot `json:"albums"`
	Artists      []ItemSnapshot `json:"artists"`
	Playlists    []ItemSnapshot `json:"playlists"`
	Tracks       []ItemSnapshot `json:"tracks"`
}

// Snapshot copies the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Generation:   s.generation,
		QueryID:      s.queryID,
		Query:        s.query,
		Category:     s.current,
		InputEnabled: s.inputEnabled.Load(),
		Open:         s.open,
		Status:       s.status,
		Albums:       snapshotItems(s.view.lists[CategoryAlbum]),
		Artists:      snapshotItems(s.view.lists[CategoryArtist]),
		Playlists:    snapshotItems(s.view.lists[CategoryPlaylist]),
		Tracks:       snapshotItems(s.view.lists[CategoryTrack]),
	}
}

func snapshotItems(items []Item) []ItemSnapshot {
	out := make([]ItemSnapshot, 0, len(items))
	for _, item := range items {
		key := item.Key()
		snap := ItemSnapshot{
			Category: key.Category,
			ID:       key.ID,
			URI:      key.String(),
			Name:     item.Name(),
			Subtitle: item.Subtitle(),
			Cover:    item.Cover(),
		}
		switch it := item.(type) {
		case *TrackItem:
			snap.ArtistID = it.ArtistID
			snap.AlbumID = it.AlbumID
		case *ArtistItem:
			snap.Genres = it.Genres
		case *PlaylistItem:
			snap.TrackCount = it.TrackCount
		}
		out = append(out, snap)
	}
	return out
}
