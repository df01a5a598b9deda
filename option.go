package breaker

import "time"

type config struct {
	failureThreshold     float64
	minThroughput        uint64
	cooldown             time.Duration
	probeInterval        int
	consecutiveFailures  uint64
	consecutiveSuccesses uint64

	policy    Policy
	condition Condition
	clock     Clock
	sink      MetricSink
	hooks     *Hooks
}

// Option configures a Circuit.
type Option func(*config)

// WithFailureThreshold sets the error rate in [0, 1] that trips the
// circuit once the minimum throughput is reached. Default is 0.5.
func WithFailureThreshold(rate float64) Option {
	return func(c *config) {
		c.failureThreshold = rate
	}
}

// WithMinThroughput sets the total call count below which the error rate
// is not consulted. Default is 10.
func WithMinThroughput(n uint64) Option {
	return func(c *config) {
		c.minThroughput = n
	}
}

// WithCooldown sets how long the circuit stays open before probing the
// dependency again. Default is 30 seconds.
func WithCooldown(d time.Duration) Option {
	return func(c *config) {
		c.cooldown = d
	}
}

// WithProbeInterval sets how many probe requests are budgeted per recovery
// attempt in the half-open state. Values below 1 are raised to 1. Default
// is 5.
func WithProbeInterval(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.probeInterval = n
	}
}

// WithConsecutiveFailures sets the failure streak that trips the circuit
// regardless of the error rate. Default is 5.
func WithConsecutiveFailures(n uint64) Option {
	return func(c *config) {
		c.consecutiveFailures = n
	}
}

// WithConsecutiveSuccesses sets the success streak that closes a half-open
// circuit. Default is 3.
func WithConsecutiveSuccesses(n uint64) Option {
	return func(c *config) {
		c.consecutiveSuccesses = n
	}
}

// WithPolicy replaces the default trip policy. The threshold and streak
// options only shape the default policy; a custom policy brings its own
// settings.
func WithPolicy(p Policy) Option {
	if p == nil {
		panic("breaker: nil Policy")
	}
	return func(c *config) {
		c.policy = p
	}
}

// If sets the condition that determines whether an error counts as a failure.
// By default, any non-nil error is a failure.
func If(cond Condition) Option {
	return func(c *config) {
		c.condition = cond
	}
}

// IfNot sets a condition where matching errors are NOT counted as failures.
// This is equivalent to If(Not(cond)).
func IfNot(cond Condition) Option {
	return If(Not(cond))
}

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clock Clock) Option {
	if clock == nil {
		panic("breaker: nil Clock")
	}
	return func(c *config) {
		c.clock = clock
	}
}

// WithMetricSink sets the sink that receives breaker telemetry. Default is
// NopMetricSink.
func WithMetricSink(sink MetricSink) Option {
	if sink == nil {
		panic("breaker: nil MetricSink")
	}
	return func(c *config) {
		c.sink = sink
	}
}

// WithHooks sets the lifecycle callback registry. Default is an empty
// registry, also reachable later through Circuit.Hooks.
func WithHooks(hooks *Hooks) Option {
	if hooks == nil {
		panic("breaker: nil Hooks")
	}
	return func(c *config) {
		c.hooks = hooks
	}
}
