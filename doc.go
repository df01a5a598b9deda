// Package breaker implements the circuit breaker pattern for resilient distributed systems.
//
// breaker protects services from cascading failures by:
//
//   - Tracking Outcomes: Error rates and failure streaks trip the circuit open
//   - Fast Rejection: Open circuits reject calls immediately without load
//   - Probed Recovery: Half-open state admits a budget of probe calls
//   - Pluggable Policies: Streak, sliding-window and EMA based trip decisions
//   - Lifecycle Hooks: Callbacks for transitions, outcomes and rejections
//   - Telemetry: A MetricSink interface with a tally adapter in breakertally
//
// The hot path takes no exclusive lock. State lives in a single atomic
// word, statistics in independent atomic counters, and transitions are
// compare-and-swap operations, so concurrent calls never serialize on the
// breaker itself.
//
// # Quick Start
//
// Create a circuit and protect calls:
//
//	circuit := breaker.New("payment-service")
//
//	err := circuit.Do(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, amount)
//	})
//	if breaker.IsOpen(err) {
//	    return handleFallback()
//	}
//
// For functions that return values, use the generic Run helper:
//
//	user, err := breaker.Run(ctx, circuit, func(ctx context.Context) (*User, error) {
//	    return client.GetUser(ctx, id)
//	})
//
// # Circuit States
//
// The circuit breaker has three states:
//
//	Closed (normal):
//	    - Requests flow through to the protected function
//	    - Outcomes are recorded and the policy is consulted on failures
//	    - When the policy says trip, the circuit opens
//
//	Open (tripped):
//	    - Requests are rejected immediately with ErrOpen
//	    - After the cooldown, the next call moves the circuit to half-open
//
//	HalfOpen (probing):
//	    - A budget of probe requests is allowed through
//	    - Any probe failure reopens the circuit
//	    - Enough probe successes close it and clear the statistics
//
// The open-to-half-open move happens on the first call after the cooldown,
// not on a timer. Exactly one of any number of concurrent callers wins
// that transition; it arms the probe budget and runs as the first probe.
// The others probe against the budget or are rejected once it is spent.
// A spent budget re-arms after a further cooldown, so a half-open circuit
// that stops receiving probe traffic is not stuck.
//
// Every call is judged by the rules of the state it was admitted under.
// A call admitted while closed cannot, for example, be counted as a
// failed probe because the circuit moved while it was in flight.
//
// # Configuration
//
// Configure thresholds and timing with options:
//
//	circuit := breaker.New("api",
//	    breaker.WithFailureThreshold(0.5),          // Trip at a 50% error rate
//	    breaker.WithMinThroughput(20),              // ...once 20 calls were seen
//	    breaker.WithConsecutiveFailures(5),         // Or on 5 straight failures
//	    breaker.WithCooldown(30*time.Second),       // Wait 30s before probing
//	    breaker.WithProbeInterval(3),               // Budget 3 probes per attempt
//	    breaker.WithConsecutiveSuccesses(2),        // Close after 2 good probes
//	)
//
// Default values:
//
//   - FailureThreshold: 0.5 error rate
//   - MinThroughput: 10 calls
//   - Cooldown: 30 seconds
//   - ProbeInterval: 5 probes
//   - ConsecutiveFailures: 5
//   - ConsecutiveSuccesses: 3
//
// # Trip Policies
//
// The threshold options configure the built-in DefaultPolicy: trip when
// the error rate reaches the threshold over a minimum throughput, or on a
// failure streak; close on a success streak. Two more policies ship with
// the package and WithPolicy accepts anything that implements Policy:
//
//	// Trip on the error rate inside a sliding window, so old failures
//	// age out, and hold the circuit open for a minimum recovery time.
//	policy := breaker.NewTimeBasedPolicy(breaker.TimeBasedPolicyConfig{
//	    WindowSize:       10 * time.Second,
//	    FailureThreshold: 0.5,
//	    MinRecoveryTime:  5 * time.Second,
//	})
//	circuit := breaker.New("api", breaker.WithPolicy(policy))
//
//	// Trip on an exponentially weighted error rate, but only while the
//	// circuit carries enough traffic for the rate to mean anything.
//	policy := breaker.NewThroughputAwarePolicy(breaker.ThroughputAwarePolicyConfig{
//	    Alpha:                  0.1,
//	    MinThroughputPerSecond: 5,
//	})
//
// Policies that keep their own outcome windows are fed automatically after
// every completed call.
//
// # Failure Conditions
//
// By default, any non-nil error counts as a failure. Customize this with If:
//
//	// Only count specific errors as failures
//	circuit := breaker.New("api",
//	    breaker.If(func(err error) bool {
//	        return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
//	    }),
//	)
//
// Use IfNot to exclude certain errors:
//
//	// Don't count 404s as failures
//	circuit := breaker.New("api",
//	    breaker.IfNot(func(err error) bool {
//	        return errors.Is(err, ErrNotFound)
//	    }),
//	)
//
// Use Not to invert any condition:
//
//	isTransient := func(err error) bool { return errors.Is(err, ErrTimeout) }
//	isPermanent := breaker.Not(isTransient)
//
// # Lifecycle Hooks
//
// A Hooks registry carries one callback per event. Callbacks take no
// arguments, run synchronously on the goroutine that triggered the event
// and never under a breaker lock, so they may call back into the circuit:
//
//	hooks := breaker.NewHooks()
//	hooks.SetOnOpen(func() { alert.Page("circuit opened") })
//	hooks.SetOnClose(func() { alert.Resolve("circuit closed") })
//	hooks.SetOnReject(func() { metrics.Increment("rejected") })
//
//	circuit := breaker.New("service", breaker.WithHooks(hooks))
//
// Available events:
//
//   - OnOpen, OnClose, OnHalfOpen: the circuit entered that state
//   - OnSuccess, OnFailure: a call completed with that outcome
//   - OnReject: a call was turned away with ErrOpen
//
// Setting a callback replaces the previous one; registration is safe while
// the circuit is live. The registry is also reachable through
// circuit.Hooks(). The breakerzap subpackage builds a registry that logs
// every event through a zap logger.
//
// # Metrics
//
// A MetricSink receives transitions, trip-time error rates, probe
// admissions and per-call outcomes with latency:
//
//	scope, closer := tally.NewRootScope(opts, time.Second)
//	defer closer.Close()
//
//	circuit := breaker.New("api",
//	    breaker.WithMetricSink(breakertally.NewSink(scope)),
//	)
//
// The default sink discards everything.
//
// # Config Files
//
// Circuit settings can come from YAML, with durations written as strings:
//
//	cfg, err := breaker.ParseConfig(data)
//	if err != nil {
//	    return err
//	}
//	circuit := breaker.New("api", cfg.Options()...)
//
// Zero-valued fields fall back to the package defaults, so a config file
// only states what it overrides.
//
// # Fallback Pattern
//
// Use IsOpen to detect open circuits and provide fallback behavior:
//
//	func GetUser(ctx context.Context, id string) (*User, error) {
//	    user, err := breaker.Run(ctx, circuit, func(ctx context.Context) (*User, error) {
//	        return client.GetUser(ctx, id)
//	    })
//	    if breaker.IsOpen(err) {
//	        return getCachedUser(id)  // Fallback to cache
//	    }
//	    return user, err
//	}
//
// # Generic Helper
//
// The Run function provides type-safe return values:
//
//	// Returns (T, error) instead of just error
//	result, err := breaker.Run(ctx, circuit, func(ctx context.Context) (MyType, error) {
//	    return doSomething(ctx)
//	})
//
// This avoids the need for closures to capture return values.
//
// # Asynchronous Calls
//
// Go runs the protected function on its own goroutine and delivers the
// outcome on a buffered channel:
//
//	errc := circuit.Go(ctx, func(ctx context.Context) error {
//	    return client.Publish(ctx, event)
//	})
//	select {
//	case err := <-errc:
//	    return err
//	case <-ctx.Done():
//	    return ctx.Err()
//	}
//
// Rejection, recording and transitions behave exactly as with Do.
//
// # Manual Control
//
// Force the circuit into a state regardless of what the policy thinks:
//
//	changed := circuit.ForceOpen()    // trip, e.g. for maintenance
//	changed := circuit.ForceClosed()  // close and clear statistics
//	circuit.ResetStats()              // clear statistics, keep the state
//
// Both force methods report whether the state actually changed, and a
// forced-open circuit recovers through the normal cooldown and probe
// cycle. Useful for admin endpoints or after deploying fixes.
//
// # Inspecting State
//
// Query the circuit's current status:
//
//	state := circuit.State()        // Closed, Open, or HalfOpen
//	name := circuit.Name()          // The circuit's name
//	rate := circuit.ErrorRate()     // Failures over total calls
//	counts := circuit.Counts()      // Counters and streaks snapshot
//	age := circuit.TimeInState()    // Time since the last transition
//
// Note that State reports the live state word: an open circuit whose
// cooldown has passed still reads Open until a call moves it.
//
// # Testing
//
// Inject a fake clock to control time in tests:
//
//	type fakeClock struct {
//	    now time.Time
//	}
//
//	func (c *fakeClock) Now() time.Time { return c.now }
//	func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
//
//	func TestCircuitProbesAfterCooldown(t *testing.T) {
//	    clock := &fakeClock{now: time.Now()}
//	    circuit := breaker.New("test",
//	        breaker.WithConsecutiveFailures(1),
//	        breaker.WithCooldown(30*time.Second),
//	        breaker.WithClock(clock),
//	    )
//
//	    // Trip the circuit
//	    _ = circuit.Do(ctx, func(ctx context.Context) error {
//	        return errors.New("fail")
//	    })
//	    assert.Equal(t, breaker.Open, circuit.State())
//
//	    // Advance past the cooldown; the next call runs as a probe
//	    clock.Advance(31 * time.Second)
//	    err := circuit.Do(ctx, func(ctx context.Context) error { return nil })
//	    assert.NoError(t, err)
//	    assert.Equal(t, breaker.HalfOpen, circuit.State())
//	}
//
// # Best Practices
//
// 1. Name circuits after the service they protect:
//
//	breaker.New("payment-gateway")
//	breaker.New("user-service")
//
// 2. Use hooks and a metric sink for observability instead of wrapping:
//
//	hooks.SetOnOpen(func() { /* log, metric, alert */ })
//	breaker.WithMetricSink(breakertally.NewSink(scope))
//
// 3. Provide fallbacks for open circuits:
//
//	if breaker.IsOpen(err) {
//	    return cachedValue, nil
//	}
//
// 4. Tune the policy to your traffic patterns:
//
//	// High-traffic: rate-based tripping with a healthy throughput floor
//	breaker.WithFailureThreshold(0.3)
//	breaker.WithMinThroughput(100)
//
//	// Low-traffic: streaks react faster than rates
//	breaker.WithConsecutiveFailures(3)
//
// 5. Budget more probes for gradual recovery:
//
//	breaker.WithProbeInterval(5)
//	breaker.WithConsecutiveSuccesses(3)
//
// # Comparison to Other Patterns
//
// Circuit breaker vs retry:
//
//   - Retry: Repeats failed calls with backoff
//   - Circuit breaker: Stops calling after repeated failures
//
// They work well together:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return circuit.Do(ctx, func(ctx context.Context) error {
//	        return client.Call(ctx)
//	    })
//	}, retry.If(func(err error) bool {
//	    return !breaker.IsOpen(err)  // Don't retry if circuit is open
//	}))
package breaker
