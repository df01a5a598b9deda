package breaker

import "sync"

// Hooks is a registry of circuit lifecycle callbacks. Each event holds at
// most one callback and setting another replaces it. Callbacks run
// synchronously on the goroutine that triggered the event, after the
// circuit has released every lock, so a callback may call back into the
// circuit without deadlocking.
//
// A Hooks value may be shared between circuits and callbacks may be
// replaced while the circuit is live.
type Hooks struct {
	mu         sync.RWMutex
	onOpen     func()
	onClose    func()
	onHalfOpen func()
	onSuccess  func()
	onFailure  func()
	onReject   func()
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// SetOnOpen registers fn to run when the circuit opens.
func (h *Hooks) SetOnOpen(fn func()) {
	h.mu.Lock()
	h.onOpen = fn
	h.mu.Unlock()
}

// SetOnClose registers fn to run when the circuit closes.
func (h *Hooks) SetOnClose(fn func()) {
	h.mu.Lock()
	h.onClose = fn
	h.mu.Unlock()
}

// SetOnHalfOpen registers fn to run when the circuit begins probing.
func (h *Hooks) SetOnHalfOpen(fn func()) {
	h.mu.Lock()
	h.onHalfOpen = fn
	h.mu.Unlock()
}

// SetOnSuccess registers fn to run after every successful call.
func (h *Hooks) SetOnSuccess(fn func()) {
	h.mu.Lock()
	h.onSuccess = fn
	h.mu.Unlock()
}

// SetOnFailure registers fn to run after every failed call.
func (h *Hooks) SetOnFailure(fn func()) {
	h.mu.Lock()
	h.onFailure = fn
	h.mu.Unlock()
}

// SetOnReject registers fn to run when the circuit rejects a call.
func (h *Hooks) SetOnReject(fn func()) {
	h.mu.Lock()
	h.onReject = fn
	h.mu.Unlock()
}

// fireTransition runs the hook for the state just entered.
func (h *Hooks) fireTransition(to State) {
	h.mu.RLock()
	var fn func()
	switch to {
	case Open:
		fn = h.onOpen
	case Closed:
		fn = h.onClose
	case HalfOpen:
		fn = h.onHalfOpen
	}
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (h *Hooks) fireSuccess() {
	h.mu.RLock()
	fn := h.onSuccess
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (h *Hooks) fireFailure() {
	h.mu.RLock()
	fn := h.onFailure
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (h *Hooks) fireReject() {
	h.mu.RLock()
	fn := h.onReject
	h.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
