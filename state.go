package breaker

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// State represents the circuit breaker state.
type State int32

const (
	// Closed is the normal operating state. Requests flow through.
	Closed State = iota

	// Open is the tripped state. Requests are rejected immediately.
	Open

	// HalfOpen is the recovery state. A limited budget of probe requests
	// is allowed through to test whether the dependency has recovered.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// stateMachine holds the current state and the time it was entered. The
// state word is atomic so reads never block; only the entry timestamp sits
// behind a mutex, held for a single assignment at a time.
type stateMachine struct {
	state atomic.Int32
	clock Clock

	mu             sync.Mutex
	lastTransition time.Time
}

func newStateMachine(clock Clock) *stateMachine {
	return &stateMachine{
		clock:          clock,
		lastTransition: clock.Now(),
	}
}

// current returns the live state.
func (m *stateMachine) current() State {
	return State(m.state.Load())
}

// timeInState reports how long the machine has been in the current state.
func (m *stateMachine) timeInState() time.Duration {
	m.mu.Lock()
	entered := m.lastTransition
	m.mu.Unlock()
	return m.clock.Now().Sub(entered)
}

// transition moves from from to to with a single compare-and-swap and
// reports whether it won. Losing means the live state was no longer from;
// there is no retry here, callers re-read current and decide again.
func (m *stateMachine) transition(from, to State) bool {
	if !m.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	m.stamp()
	return true
}

// force moves to to regardless of the current state. It returns the state
// it left and whether anything changed.
func (m *stateMachine) force(to State) (State, bool) {
	from := State(m.state.Swap(int32(to)))
	if from == to {
		return from, false
	}
	m.stamp()
	return from, true
}

func (m *stateMachine) attemptHalfOpen() bool { return m.transition(Open, HalfOpen) }

func (m *stateMachine) resetClosed() bool { return m.transition(HalfOpen, Closed) }

func (m *stateMachine) revertToOpen() bool { return m.transition(HalfOpen, Open) }

func (m *stateMachine) stamp() {
	m.mu.Lock()
	m.lastTransition = m.clock.Now()
	m.mu.Unlock()
}
