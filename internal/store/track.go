package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Phase is the lifecycle variant of a track.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// ErrNilTrack is returned when a slice was built without its tracks.
var ErrNilTrack = errors.New("store: nil track")

// State is an immutable snapshot of one async lane.
type State[T any] struct {
	Data      T         `json:"data"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	Phase     Phase     `json:"phase"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Track holds the {data, loading, error} state of one async operation family.
// Every Begin issues a new sequence number; resolutions carrying an older
// sequence are dropped so a slow early request never overwrites a newer one.
type Track[T any] struct {
	slice string
	name  string
	hub   *Hub
	now   func() time.Time

	mu     sync.Mutex
	state  State[T]
	issued uint64
}

// NewTrack constructs an idle track. hub may be nil.
func NewTrack[T any](slice, name string, hub *Hub) *Track[T] {
	return &Track[T]{
		slice: slice,
		name:  name,
		hub:   hub,
		now:   func() time.Time { return time.Now().UTC() },
		state: State[T]{Phase: PhaseIdle},
	}
}

// NewTrackWithData constructs an idle track seeded with initial data.
func NewTrackWithData[T any](slice, name string, hub *Hub, initial T) *Track[T] {
	t := NewTrack[T](slice, name, hub)
	t.state.Data = initial
	return t
}

// Begin marks the track pending and returns the ticket for this request.
func (t *Track[T]) Begin() uint64 {
	t.mu.Lock()
	t.issued++
	seq := t.issued
	t.state.Loading = true
	t.state.Error = ""
	t.state.Phase = PhasePending
	t.state.Seq = seq
	t.mu.Unlock()

	t.publish(KindPending, seq, "")
	return seq
}

// Fulfill stores data verbatim when seq is still the latest ticket.
func (t *Track[T]) Fulfill(seq uint64, data T) bool {
	t.mu.Lock()
	if seq != t.issued {
		t.mu.Unlock()
		t.publish(KindStale, seq, "")
		return false
	}
	t.state.Data = data
	t.state.Loading = false
	t.state.Error = ""
	t.state.Phase = PhaseFulfilled
	t.state.UpdatedAt = t.now()
	t.mu.Unlock()

	t.publish(KindFulfilled, seq, "")
	return true
}

// Reject records err when seq is still the latest ticket. Data is left untouched.
func (t *Track[T]) Reject(seq uint64, err error) bool {
	msg := "request failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	t.mu.Lock()
	if seq != t.issued {
		t.mu.Unlock()
		t.publish(KindStale, seq, msg)
		return false
	}
	t.state.Loading = false
	t.state.Error = msg
	t.state.Phase = PhaseRejected
	t.state.UpdatedAt = t.now()
	t.mu.Unlock()

	t.publish(KindRejected, seq, msg)
	return true
}

// Mutate replaces data with the value returned by fn. fn must not modify its
// argument in place; snapshots handed out earlier share the old value.
func (t *Track[T]) Mutate(fn func(current T) (T, bool)) bool {
	if fn == nil {
		return false
	}
	t.mu.Lock()
	next, changed := fn(t.state.Data)
	if changed {
		t.state.Data = next
		t.state.UpdatedAt = t.now()
	}
	seq := t.state.Seq
	t.mu.Unlock()

	if changed {
		t.publish(KindPatched, seq, "")
	}
	return changed
}

// Set overwrites data without touching the lifecycle fields.
func (t *Track[T]) Set(data T) {
	t.Mutate(func(T) (T, bool) { return data, true })
}

// Snapshot returns a copy of the current state.
func (t *Track[T]) Snapshot() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Name returns slice/track identifiers.
func (t *Track[T]) Name() (string, string) {
	return t.slice, t.name
}

func (t *Track[T]) publish(kind Kind, seq uint64, errMsg string) {
	if t.hub == nil {
		return
	}
	t.hub.publish(Transition{
		Slice: t.slice,
		Track: t.name,
		Kind:  kind,
		Seq:   seq,
		Error: errMsg,
		At:    t.now(),
	})
}

// Run dispatches fn on the track: pending, then fulfilled or rejected.
// Errors are recorded on the track and never returned to the caller.
func Run[T any](ctx context.Context, t *Track[T], fn func(context.Context) (T, error)) State[T] {
	if t == nil {
		var zero State[T]
		zero.Phase = PhaseRejected
		zero.Error = ErrNilTrack.Error()
		return zero
	}
	seq := t.Begin()
	data, err := fn(ctx)
	if err != nil {
		t.Reject(seq, err)
	} else {
		t.Fulfill(seq, data)
	}
	return t.Snapshot()
}
