package service

import (
	"sync"
)

// InFlightSet tracks the object ids a worker is processing right now.
// NSQ does not dedupe messages, so a worker may be handed the same
// notification twice while the first copy is still running. It's safe
// to share across goroutines.
type InFlightSet struct {
	items map[string]struct{}
	mutex sync.Mutex
}

func NewInFlightSet() *InFlightSet {
	return &InFlightSet{
		items: make(map[string]struct{}),
	}
}

// Claim adds id to the set and returns true, or returns false if id
// was already there.
func (s *InFlightSet) Claim(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.items[id]; exists {
		return false
	}
	s.items[id] = struct{}{}
	return true
}

// Release removes id from the set.
func (s *InFlightSet) Release(id string) {
	s.mutex.Lock()
	delete(s.items, id)
	s.mutex.Unlock()
}

func (s *InFlightSet) Contains(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, exists := s.items[id]
	return exists
}

func (s *InFlightSet) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.items)
}

// Items returns a copy of the ids currently in flight.
func (s *InFlightSet) Items() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	items := make([]string, 0, len(s.items))
	for id := range s.items {
		items = append(items, id)
	}
	return items
}
