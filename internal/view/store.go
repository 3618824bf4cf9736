package view

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory view registry with TTL eviction.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		views: make(map[string]*View),
		ttl:   ttl,
	}
}

func (s *Store) Put(v *View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v.ID] = v
}

func (s *Store) Get(id string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[id]
}

// Remove deletes a view and returns it, or nil if absent.
func (s *Store) Remove(id string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.views[id]
	delete(s.views, id)
	return v
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Cleanup removes views idle for longer than the TTL and returns them.
// View locks are taken only after the registry lock is released, so a
// long render on one view does not stall lookups.
func (s *Store) Cleanup() []*View {
	s.mu.Lock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	now := time.Now()
	var idle []*View
	for _, v := range views {
		v.mu.Lock()
		expired := now.Sub(v.UpdatedAt) > s.ttl
		v.mu.Unlock()
		if expired {
			idle = append(idle, v)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []*View
	for _, v := range idle {
		// Skip views already closed or replaced meanwhile.
		if s.views[v.ID] == v {
			delete(s.views, v.ID)
			removed = append(removed, v)
		}
	}
	return removed
}
