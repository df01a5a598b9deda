package breaker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Func is the function signature for protected operations.
type Func func(ctx context.Context) error

// Condition determines whether an error should count as a failure.
type Condition func(error) bool

// Default values.
const (
	DefaultFailureThreshold     = 0.5
	DefaultMinThroughput        = 10
	DefaultCooldown             = 30 * time.Second
	DefaultProbeInterval        = 5
	DefaultConsecutiveFailures  = 5
	DefaultConsecutiveSuccesses = 3
)

// Circuit is a circuit breaker. Safe for concurrent use; calls in flight
// never block each other on the breaker itself.
type Circuit struct {
	name string
	cfg  config

	machine *stateMachine
	stats   *Stats
	probes  atomic.Uint32

	probeMu   sync.Mutex
	lastProbe time.Time
}

// New creates a Circuit with the given options. Options that violate their
// documented range panic.
func New(name string, opts ...Option) *Circuit {
	cfg := config{
		failureThreshold:     DefaultFailureThreshold,
		minThroughput:        DefaultMinThroughput,
		cooldown:             DefaultCooldown,
		probeInterval:        DefaultProbeInterval,
		consecutiveFailures:  DefaultConsecutiveFailures,
		consecutiveSuccesses: DefaultConsecutiveSuccesses,
		condition:            defaultCondition,
		clock:                realClock{},
		sink:                 NopMetricSink{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.failureThreshold < 0 || cfg.failureThreshold > 1 {
		panic("breaker: failure threshold must be within [0, 1]")
	}
	if cfg.cooldown < 0 {
		panic("breaker: negative cooldown")
	}
	if cfg.hooks == nil {
		cfg.hooks = NewHooks()
	}
	if cfg.policy == nil {
		cfg.policy = &DefaultPolicy{
			failureThreshold:     cfg.failureThreshold,
			minThroughput:        cfg.minThroughput,
			consecutiveFailures:  cfg.consecutiveFailures,
			consecutiveSuccesses: cfg.consecutiveSuccesses,
		}
	}
	if ca, ok := cfg.policy.(clockAware); ok {
		ca.setClock(cfg.clock)
	}
	return &Circuit{
		name:      name,
		cfg:       cfg,
		machine:   newStateMachine(cfg.clock),
		stats:     newStats(cfg.clock),
		lastProbe: cfg.clock.Now(),
	}
}

// Do executes fn with circuit breaker protection. A rejected call returns
// ErrOpen without invoking fn; an admitted call returns fn's error
// unchanged after recording it.
func (c *Circuit) Do(ctx context.Context, fn Func) error {
	state, err := c.preCall()
	if err != nil {
		c.cfg.hooks.fireReject()
		return err
	}

	start := c.cfg.clock.Now()
	fnErr := fn(ctx)
	elapsed := c.cfg.clock.Now().Sub(start)

	c.postCall(state, fnErr, elapsed)

	return fnErr
}

// State returns the current state. An open circuit whose cooldown has
// passed still reads Open; the move to HalfOpen happens when the next
// call arrives, not on its own.
func (c *Circuit) State() State {
	return c.machine.current()
}

// Name returns the circuit name.
func (c *Circuit) Name() string {
	return c.name
}

// TimeInState reports how long the circuit has been in its current state.
func (c *Circuit) TimeInState() time.Duration {
	return c.machine.timeInState()
}

// ErrorRate returns failures over total calls since the last reset.
func (c *Circuit) ErrorRate() float64 {
	return c.stats.ErrorRate()
}

// Counts returns a snapshot of the call statistics.
func (c *Circuit) Counts() Counts {
	return c.stats.Counts()
}

// ResetStats clears the call statistics without touching the state.
func (c *Circuit) ResetStats() {
	c.stats.Reset()
}

// Hooks returns the circuit's callback registry.
func (c *Circuit) Hooks() *Hooks {
	return c.cfg.hooks
}

// ForceOpen trips the circuit regardless of policy and reports whether
// the state changed. The circuit recovers through the usual cooldown and
// probe cycle.
func (c *Circuit) ForceOpen() bool {
	from, ok := c.machine.force(Open)
	if !ok {
		return false
	}
	c.notifyTransition(from, Open)
	return true
}

// ForceClosed closes the circuit regardless of policy, clears the call
// statistics and reports whether the state changed.
func (c *Circuit) ForceClosed() bool {
	from, ok := c.machine.force(Closed)
	if !ok {
		return false
	}
	c.stats.Reset()
	c.notifyTransition(from, Closed)
	return true
}

// preCall gates one call attempt. It returns the state the call was
// admitted under, or ErrOpen. A lost transition race re-reads the state
// and decides again.
func (c *Circuit) preCall() (State, error) {
	for {
		switch state := c.machine.current(); state {
		case Closed:
			return Closed, nil

		case Open:
			if c.machine.timeInState() < c.cfg.cooldown {
				return Open, ErrOpen
			}
			if c.beginRecovery() {
				c.notifyTransition(Open, HalfOpen)
				return HalfOpen, nil
			}

		case HalfOpen:
			if c.takeProbe() {
				c.cfg.sink.RecordProbeAttempt(true)
				return HalfOpen, nil
			}
			c.cfg.sink.RecordProbeAttempt(false)
			return HalfOpen, ErrOpen
		}
	}
}

// postCall records a completed call and evaluates the transition rules of
// the state the call was admitted under, not whatever the live state has
// become since.
func (c *Circuit) postCall(state State, err error, elapsed time.Duration) {
	failure := c.cfg.condition(err)

	if failure {
		c.stats.RecordFailure()
	} else {
		c.stats.RecordSuccess()
	}
	if rec, ok := c.cfg.policy.(policyRecorder); ok {
		if failure {
			rec.RecordFailure()
		} else {
			rec.RecordSuccess()
		}
	}

	c.cfg.sink.RecordCall(!failure, elapsed)
	if failure {
		c.cfg.hooks.fireFailure()
	} else {
		c.cfg.hooks.fireSuccess()
	}

	switch state {
	case Closed:
		if failure && c.cfg.policy.ShouldTrip(c.stats) && c.machine.transition(Closed, Open) {
			c.notifyTransition(Closed, Open)
			c.cfg.sink.RecordErrorRate(c.stats.ErrorRate())
		}

	case HalfOpen:
		if failure {
			if c.machine.revertToOpen() {
				c.notifyTransition(HalfOpen, Open)
			}
			return
		}
		if c.cfg.policy.ShouldReset(c.stats) && c.machine.resetClosed() {
			c.stats.Reset()
			c.notifyTransition(HalfOpen, Closed)
		}
	}
}

// beginRecovery attempts the Open to HalfOpen transition. The winner is
// admitted as the first probe, on top of the budget it arms. The state
// swap and the arming happen under the probe mutex: a caller that sees the
// half-open state with a still-zero budget lands in rearmProbes, blocks on
// the same mutex, and finds lastProbe freshly stamped, so the arming
// window cannot hand out an extra admission.
func (c *Circuit) beginRecovery() bool {
	now := c.cfg.clock.Now()

	c.probeMu.Lock()
	defer c.probeMu.Unlock()

	if !c.machine.attemptHalfOpen() {
		return false
	}
	c.probes.Store(uint32(c.cfg.probeInterval))
	c.lastProbe = now
	return true
}

// takeProbe claims one slot from the probe budget. Once the budget is
// spent it re-arms after a full cooldown has passed since the last granted
// probe, so a half-open circuit whose probes went unanswered does not
// reject forever.
func (c *Circuit) takeProbe() bool {
	for {
		n := c.probes.Load()
		if n == 0 {
			return c.rearmProbes()
		}
		if c.probes.CompareAndSwap(n, n-1) {
			c.stampProbe(c.cfg.clock.Now())
			return true
		}
	}
}

// rearmProbes restores the spent probe budget once a cooldown has passed
// since the last granted probe. The probe mutex makes the elapsed check and
// the re-arm a single step, so exactly one caller wins each cooldown window
// and is admitted. now must be read before taking the lock: a caller racing
// beginRecovery then compares against a lastProbe stamped at or after its
// own timestamp and is denied.
func (c *Circuit) rearmProbes() bool {
	now := c.cfg.clock.Now()

	c.probeMu.Lock()
	defer c.probeMu.Unlock()

	if now.Sub(c.lastProbe) < c.cfg.cooldown {
		return false
	}
	c.lastProbe = now
	c.probes.Store(uint32(c.cfg.probeInterval) - 1)
	return true
}

func (c *Circuit) stampProbe(now time.Time) {
	c.probeMu.Lock()
	c.lastProbe = now
	c.probeMu.Unlock()
}

// notifyTransition reports a completed transition to the sink and hooks.
// It runs with no circuit locks held.
func (c *Circuit) notifyTransition(from, to State) {
	c.cfg.sink.RecordStateTransition(from, to)
	c.cfg.hooks.fireTransition(to)
}

func defaultCondition(err error) bool {
	return err != nil
}
