package gallery

import (
	"sort"
	"sync"
)

// Selection is the multi-select set over the canonical collection. It
// subscribes to the store and prunes itself after every collection change, so
// it never contains an id absent from the collection.
type Selection struct {
	store *Store

	mu  sync.Mutex
	ids map[int64]struct{}

	unsubscribe func()
}

func NewSelection(store *Store) *Selection {
	s := &Selection{
		store: store,
		ids:   make(map[int64]struct{}),
	}
	s.unsubscribe = store.Subscribe(s.prune)
	return s
}

// Toggle adds id to the selection, or removes it if already selected.
// Toggling an id not in the canonical collection is a no-op: admitting it
// would violate the pruning invariant.
func (s *Selection) Toggle(id int64) {
	if !s.store.Has(id) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int64]struct{})
}

// Selected reports whether id is currently selected.
func (s *Selection) Selected(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Snapshot returns the selected ids, sorted.
func (s *Selection) Snapshot() []int64 {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Close detaches the selection from the store.
func (s *Selection) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// prune intersects the selection with the canonical id set. Runs after every
// store change; skips the rebuild when everything selected is still present.
func (s *Selection) prune() {
	canonical := s.store.IDSet()

	s.mu.Lock()
	defer s.mu.Unlock()

	stale := false
	for id := range s.ids {
		if _, ok := canonical[id]; !ok {
			stale = true
			break
		}
	}
	if !stale {
		return
	}

	kept := make(map[int64]struct{}, len(s.ids))
	for id := range s.ids {
		if _, ok := canonical[id]; ok {
			kept[id] = struct{}{}
		}
	}
	s.ids = kept
}
