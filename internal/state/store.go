package state

import (
	"maps"
	"slices"
	"sync"
)

// Store owns the session state. Dispatch is serialized, so subscribers
// observe transitions in dispatch order.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

func NewStore() *Store {
	return &Store{
		state:       InitialState(),
		subscribers: make(map[int]func(State)),
	}
}

// Dispatch applies a to the current state and notifies subscribers.
// Subscribers run with the store locked and must not call Dispatch.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	if len(s.subscribers) == 0 {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(s.subscribers)) {
		s.subscribers[id](clone(s.state))
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.state)
}

// Subscribe registers fn to receive every new state. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
