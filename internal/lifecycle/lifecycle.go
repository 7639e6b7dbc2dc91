package lifecycle

import (
	"errors"
	"sync"
)

// ErrInFlight is returned by Begin while a request is already running.
var ErrInFlight = errors.New("request already in flight")

// State enumerates the phases a tracked request moves through.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateCompleted
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in_flight"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of a tracker. Value is meaningful only
// when State is StateCompleted, Reason only when StateFailed.
type Snapshot[T any] struct {
	State  State
	Value  T
	Reason string
}

// Tracker serializes a request lifecycle: at most one request is in flight,
// and a new submission replaces the previous outcome. All methods are safe
// for concurrent use.
type Tracker[T any] struct {
	mu     sync.Mutex
	state  State
	value  T
	reason string
}

// NewTracker returns a tracker in the idle state.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{}
}

// Begin moves the tracker into the in-flight state, clearing any previous
// outcome. Returns ErrInFlight when a request is already running; the new
// submission is rejected, never queued.
func (t *Tracker[T]) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateInFlight {
		return ErrInFlight
	}
	var zero T
	t.state = StateInFlight
	t.value = zero
	t.reason = ""
	return nil
}

// Complete records a successful outcome. Ignored unless a request is in
// flight.
func (t *Tracker[T]) Complete(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateInFlight {
		return
	}
	t.state = StateCompleted
	t.value = v
}

// Fail records a failed outcome with a reason. Ignored unless a request is
// in flight.
func (t *Tracker[T]) Fail(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateInFlight {
		return
	}
	var zero T
	t.state = StateFailed
	t.value = zero
	t.reason = reason
}

// Reset discards a completed or failed outcome and returns to idle. An
// in-flight request cannot be abandoned, so Reset is a no-op then; only
// the goroutine that passed Begin can resolve it.
func (t *Tracker[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateInFlight {
		return
	}
	var zero T
	t.state = StateIdle
	t.value = zero
	t.reason = ""
}

// Snapshot returns a copy of the current state for rendering.
func (t *Tracker[T]) Snapshot() Snapshot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot[T]{State: t.state, Value: t.value, Reason: t.reason}
}
