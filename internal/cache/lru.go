package cache

import (
	"container/list"
	"sync"
	"time"
)

// lruStore is a size-bounded LRU map of byte values with per-entry expiry
type lruStore struct {
	maxItems int
	items    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

// lruEntry represents a cached value with expiration
type lruEntry struct {
	key       string
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func newLRUStore(maxItems int) *lruStore {
	if maxItems <= 0 {
		maxItems = 1
	}
	return &lruStore{
		maxItems: maxItems,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// get returns a copy of the value and marks it most recently used
func (s *lruStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, found := s.items[key]
	if !found {
		return nil, false
	}

	entry := elem.Value.(*lruEntry)
	if entry.expired(time.Now()) {
		s.removeElement(elem)
		return nil, false
	}

	s.lru.MoveToFront(elem)

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, true
}

// set stores a copy of value, evicting the least recently used entries over capacity
func (s *lruStore) set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	data := make([]byte, len(value))
	copy(data, value)

	if elem, found := s.items[key]; found {
		entry := elem.Value.(*lruEntry)
		entry.data = data
		entry.expiresAt = expiresAt
		s.lru.MoveToFront(elem)
		return
	}

	s.items[key] = s.lru.PushFront(&lruEntry{
		key:       key,
		data:      data,
		expiresAt: expiresAt,
	})

	for s.lru.Len() > s.maxItems {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
}

func (s *lruStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, found := s.items[key]; found {
		s.removeElement(elem)
	}
}

func (s *lruStore) contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, found := s.items[key]
	return found && !elem.Value.(*lruEntry).expired(time.Now())
}

func (s *lruStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *lruStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.lru = list.New()
}

// removeElement removes an element from both the map and list (caller holds mu)
func (s *lruStore) removeElement(elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	delete(s.items, entry.key)
	s.lru.Remove(elem)
}
