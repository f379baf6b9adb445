package report

import "sync"

// LRUStore keeps recently used launches in memory in front of a backing Store.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	// Doubly-linked list for LRU ordering (most recent at head).
	head, tail *lruEntry
	items      map[string]*lruEntry
}

type lruEntry struct {
	key    string
	launch *Launch
	prev   *lruEntry
	next   *lruEntry
}

// NewLRUStore creates an LRU cache with the given capacity that delegates
// to back on cache misses. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		items: make(map[string]*lruEntry, cap),
	}
}

// Save writes through to the backing store and caches the launch once the
// write succeeded.
func (s *LRUStore) Save(launch *Launch) error {
	if err := s.back.Save(launch); err != nil {
		return err
	}
	s.mu.Lock()
	s.put(launch.ID, launch)
	s.mu.Unlock()
	return nil
}

// Load checks the cache first. On miss, loads from the backing store and
// promotes the launch into the cache.
func (s *LRUStore) Load(runID string) (*Launch, error) {
	s.mu.Lock()
	if e, ok := s.items[runID]; ok {
		s.moveToFront(e)
		l := e.launch
		s.mu.Unlock()
		return l, nil
	}
	s.mu.Unlock()

	launch, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.put(runID, launch)
	s.mu.Unlock()
	return launch, nil
}

// List is served by the backing store, which holds every record.
func (s *LRUStore) List(limit int) ([]*Launch, error) {
	return s.back.List(limit)
}

// Len returns the number of cached launches.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// put inserts or refreshes key. Callers hold s.mu.
func (s *LRUStore) put(key string, launch *Launch) {
	if e, ok := s.items[key]; ok {
		e.launch = launch
		s.moveToFront(e)
		return
	}
	e := &lruEntry{key: key, launch: launch}
	s.items[key] = e
	s.pushFront(e)
	if len(s.items) > s.cap {
		s.evict()
	}
}

func (s *LRUStore) pushFront(e *lruEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *LRUStore) moveToFront(e *lruEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *LRUStore) remove(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *LRUStore) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}
