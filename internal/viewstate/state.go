package viewstate

import "sync"

// DefaultSmallBreakpoint is the widest viewport, in CSS pixels, that still
// counts as small.
const DefaultSmallBreakpoint = 600

// State is the sidebar state of one console user.
type State struct {
	IsSidebarOpen bool `json:"isSidebarOpen"`
	IsSmall       bool `json:"isSmall"`
}

// Toggle returns s with the sidebar flipped.
func (s State) Toggle() State {
	s.IsSidebarOpen = !s.IsSidebarOpen
	return s
}

// WithWidth derives IsSmall from a viewport width. A non-positive width
// keeps the current value.
func (s State) WithWidth(width, breakpoint int) State {
	if width <= 0 {
		return s
	}
	s.IsSmall = width <= breakpoint
	return s
}

// Store keeps one State per key. The zero State is closed and wide.
type Store struct {
	breakpoint int

	mu     sync.Mutex
	states map[string]State
}

// NewStore constructs a store. A non-positive breakpoint uses the default.
func NewStore(breakpoint int) *Store {
	if breakpoint <= 0 {
		breakpoint = DefaultSmallBreakpoint
	}
	return &Store{breakpoint: breakpoint, states: make(map[string]State)}
}

// Get returns the state stored under key.
func (s *Store) Get(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key]
}

// Toggle flips the sidebar for key.
func (s *Store) Toggle(key string) State {
	return s.update(key, State.Toggle)
}

// SetOpen sets the sidebar for key.
func (s *Store) SetOpen(key string, open bool) State {
	return s.update(key, func(st State) State {
		st.IsSidebarOpen = open
		return st
	})
}

// Resize applies a viewport width hint for key.
func (s *Store) Resize(key string, width int) State {
	return s.update(key, func(st State) State {
		return st.WithWidth(width, s.breakpoint)
	})
}

func (s *Store) update(key string, fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.states[key])
	s.states[key] = next
	return next
}
