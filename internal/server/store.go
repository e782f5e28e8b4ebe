package server

import (
	"sync"
	"time"

	"github.com/matzehuels/threadart/pkg/pipeline"
)

// entry is one computed thread. mu serializes renders, since a session is
// not safe for concurrent use.
type entry struct {
	id      string
	created time.Time
	opts    pipeline.Options
	result  *pipeline.Result

	mu sync.Mutex
}

type store struct {
	mu      sync.Mutex
	limit   int
	entries map[string]*entry
	order   []string
}

func newStore(limit int) *store {
	return &store{limit: limit, entries: make(map[string]*entry)}
}

func (s *store) put(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.id] = e
	s.order = append(s.order, e.id)
	for len(s.order) > s.limit {
		delete(s.entries, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *store) get(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
