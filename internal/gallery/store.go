package gallery

import (
	"sync"
)

// Store is the canonical collection: the single authoritative, deduplicated,
// ordered list of assets accumulated from paginated sync. Assets keep their
// first-seen position across page merges; re-delivered ids replace the stored
// record in place (server truth wins) without reordering.
//
// All other engine components read snapshots or subscribe for change
// notifications; only the repost orchestrator writes, via Patch.
type Store struct {
	mu      sync.RWMutex
	order   []int64
	byID    map[int64]Asset
	version uint64

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextListen int
}

func NewStore() *Store {
	return &Store{
		byID:      make(map[int64]Asset),
		listeners: make(map[int]func()),
	}
}

// Replace discards the current contents and installs items as the new
// collection. Used only for the first page of a fresh sync.
func (s *Store) Replace(items []Asset) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.byID = make(map[int64]Asset, len(items))
	for _, it := range items {
		if _, ok := s.byID[it.ID]; ok {
			// duplicate within a single page: last write wins, position kept
			s.byID[it.ID] = it
			continue
		}
		s.order = append(s.order, it.ID)
		s.byID[it.ID] = it
	}
	s.version++
	s.mu.Unlock()

	s.notify()
}

// Append merges a subsequent page. Ids already present are replaced in place,
// keeping the position of the first occurrence; new ids are appended in
// response order. Applying the same page twice is a no-op beyond the first.
func (s *Store) Append(items []Asset) {
	s.mu.Lock()
	changed := false
	for _, it := range items {
		if existing, ok := s.byID[it.ID]; ok {
			if !assetEqual(existing, it) {
				changed = true
			}
			s.byID[it.ID] = it
			continue
		}
		s.order = append(s.order, it.ID)
		s.byID[it.ID] = it
		changed = true
	}
	if changed {
		s.version++
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Patch shallow-merges the set fields of p into the asset with the given id.
// A missing id is a no-op: the asset may have been pruned by a concurrent
// refresh between the caller's read and this write.
func (s *Store) Patch(id int64, p Patch) bool {
	s.mu.Lock()
	a, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	changed := false
	if p.LastRepostedAt != nil {
		if a.LastRepostedAt == nil || !a.LastRepostedAt.Equal(*p.LastRepostedAt) {
			t := *p.LastRepostedAt
			a.LastRepostedAt = &t
			changed = true
		}
	}
	if changed {
		s.byID[id] = a
		s.version++
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Snapshot returns the assets in canonical order. The slice is owned by the
// caller; the asset values are copies.
func (s *Store) Snapshot() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Asset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Get returns the asset with the given id, if present.
func (s *Store) Get(id int64) (Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	return a, ok
}

// Has reports whether an id is in the collection.
func (s *Store) Has(id int64) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Version increments on every mutation that changed the collection. Derived
// caches key on it.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// IDSet returns the current id set, used by the selection manager to prune.
func (s *Store) IDSet() map[int64]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[int64]struct{}, len(s.order))
	for _, id := range s.order {
		ids[id] = struct{}{}
	}
	return ids
}

// Subscribe registers fn to run after every collection change. The returned
// func unregisters it. Listeners run on the mutating goroutine with no store
// locks held, so they may call back into the store.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.listenerMu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

// assetEqual compares by value, treating timestamps as instants so the same
// page decoded twice still counts as unchanged.
func assetEqual(a, b Asset) bool {
	if a.ID != b.ID || a.Filename != b.Filename || a.MimeType != b.MimeType ||
		a.Bytes != b.Bytes || a.Watermarked != b.Watermarked || !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	switch {
	case a.LastRepostedAt == nil && b.LastRepostedAt == nil:
		return true
	case a.LastRepostedAt == nil || b.LastRepostedAt == nil:
		return false
	default:
		return a.LastRepostedAt.Equal(*b.LastRepostedAt)
	}
}

func (s *Store) notify() {
	s.listenerMu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
