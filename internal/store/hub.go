package store

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind identifies a track transition.
type Kind string

const (
	KindPending   Kind = "pending"
	KindFulfilled Kind = "fulfilled"
	KindRejected  Kind = "rejected"
	KindStale     Kind = "stale"
	KindPatched   Kind = "patched"
)

// Transition describes one state change of a track.
type Transition struct {
	Slice string    `json:"slice"`
	Track string    `json:"track"`
	Kind  Kind      `json:"kind"`
	Seq   uint64    `json:"seq"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// Observer receives transitions after the track lock is released.
type Observer interface {
	Observe(Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

// Observe implements Observer.
func (f ObserverFunc) Observe(t Transition) {
	if f != nil {
		f(t)
	}
}

// Hub fans transitions out to observers.
type Hub struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewHub constructs a hub with optional observers.
func NewHub(observers ...Observer) *Hub {
	h := &Hub{}
	for _, o := range observers {
		h.Subscribe(o)
	}
	return h
}

// Subscribe registers an observer.
func (h *Hub) Subscribe(o Observer) {
	if h == nil || o == nil {
		return
	}
	h.mu.Lock()
	h.observers = append(h.observers, o)
	h.mu.Unlock()
}

func (h *Hub) publish(t Transition) {
	h.mu.RLock()
	observers := append([]Observer(nil), h.observers...)
	h.mu.RUnlock()
	for _, o := range observers {
		o.Observe(t)
	}
}

// Flag is a one-shot boolean: it stays raised until cleared explicitly.
type Flag struct {
	v atomic.Bool
}

// Raise sets the flag.
func (f *Flag) Raise() { f.v.Store(true) }

// Clear resets the flag.
func (f *Flag) Clear() { f.v.Store(false) }

// IsSet reports the flag value.
func (f *Flag) IsSet() bool { return f.v.Load() }
