package breaker

import "time"

// A Policy decides when a closed circuit trips open and when a half-open
// circuit may close again. Implementations must be safe for concurrent
// use; the circuit consults them from every calling goroutine.
type Policy interface {
	// ShouldTrip reports whether a closed circuit should open.
	ShouldTrip(stats *Stats) bool

	// ShouldReset reports whether a half-open circuit should close.
	ShouldReset(stats *Stats) bool
}

// policyRecorder is implemented by policies that keep their own view of
// call outcomes. The circuit feeds them after every completed call.
type policyRecorder interface {
	RecordSuccess()
	RecordFailure()
}

// clockAware is implemented by policies that measure elapsed time. The
// circuit hands them its clock at construction.
type clockAware interface {
	setClock(Clock)
}

// DefaultPolicyConfig configures NewDefaultPolicy. Zero fields take the
// package defaults.
type DefaultPolicyConfig struct {
	// FailureThreshold is the error rate in [0, 1] that trips the circuit
	// once MinThroughput calls have been seen.
	FailureThreshold float64

	// MinThroughput is the total call count below which the error rate is
	// not consulted.
	MinThroughput uint64

	// ConsecutiveFailures trips the circuit on a failure streak of this
	// length, regardless of the error rate.
	ConsecutiveFailures uint64

	// ConsecutiveSuccesses closes a half-open circuit after a success
	// streak of this length.
	ConsecutiveSuccesses uint64
}

// DefaultPolicy trips on either a saturated error rate over a minimum
// throughput or a long enough failure streak, and closes on a success
// streak. It is the policy a Circuit uses when none is supplied.
type DefaultPolicy struct {
	failureThreshold     float64
	minThroughput        uint64
	consecutiveFailures  uint64
	consecutiveSuccesses uint64
}

// NewDefaultPolicy returns a DefaultPolicy with zero config fields replaced
// by the package defaults.
func NewDefaultPolicy(cfg DefaultPolicyConfig) *DefaultPolicy {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.MinThroughput == 0 {
		cfg.MinThroughput = DefaultMinThroughput
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultConsecutiveFailures
	}
	if cfg.ConsecutiveSuccesses == 0 {
		cfg.ConsecutiveSuccesses = DefaultConsecutiveSuccesses
	}
	return &DefaultPolicy{
		failureThreshold:     cfg.FailureThreshold,
		minThroughput:        cfg.MinThroughput,
		consecutiveFailures:  cfg.ConsecutiveFailures,
		consecutiveSuccesses: cfg.ConsecutiveSuccesses,
	}
}

// ShouldTrip reports whether the error rate has reached the threshold over
// the minimum throughput, or the failure streak has reached its limit.
// Either alone suffices.
func (p *DefaultPolicy) ShouldTrip(stats *Stats) bool {
	if stats.TotalCalls() >= p.minThroughput && stats.ErrorRate() >= p.failureThreshold {
		return true
	}
	return stats.ConsecutiveFailures() >= p.consecutiveFailures
}

// ShouldReset reports whether the success streak has reached its limit.
func (p *DefaultPolicy) ShouldReset(stats *Stats) bool {
	return stats.ConsecutiveSuccesses() >= p.consecutiveSuccesses
}

// TimeBasedPolicyConfig configures NewTimeBasedPolicy. Zero fields take
// defaults: a 10s window over 10 buckets, the package failure threshold
// and minimum throughput, a 5s recovery floor and the package success
// streak.
type TimeBasedPolicyConfig struct {
	// WindowSize is the span of the sliding outcome window.
	WindowSize time.Duration

	// BucketCount is the number of buckets the window is split into.
	BucketCount int

	// FailureThreshold is the windowed error rate that trips the circuit.
	FailureThreshold float64

	// MinCallCount is the lifetime call count below which the circuit
	// never trips.
	MinCallCount uint64

	// MinRecoveryTime keeps a half-open circuit from closing until this
	// long has passed since the last failure.
	MinRecoveryTime time.Duration

	// ConsecutiveSuccesses closes a half-open circuit after this streak.
	ConsecutiveSuccesses uint64
}

// TimeBasedPolicy trips on the error rate inside a sliding window, so old
// failures age out instead of counting forever, and refuses to close until
// the most recent failure is far enough in the past.
type TimeBasedPolicy struct {
	window               *FixedWindow
	failureThreshold     float64
	minCallCount         uint64
	minRecoveryTime      time.Duration
	consecutiveSuccesses uint64
	clock                Clock
}

// NewTimeBasedPolicy returns a TimeBasedPolicy with zero config fields
// replaced by defaults.
func NewTimeBasedPolicy(cfg TimeBasedPolicyConfig) *TimeBasedPolicy {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = 10 * time.Second
	}
	if cfg.BucketCount == 0 {
		cfg.BucketCount = 10
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.MinCallCount == 0 {
		cfg.MinCallCount = DefaultMinThroughput
	}
	if cfg.MinRecoveryTime == 0 {
		cfg.MinRecoveryTime = 5 * time.Second
	}
	if cfg.ConsecutiveSuccesses == 0 {
		cfg.ConsecutiveSuccesses = DefaultConsecutiveSuccesses
	}
	return &TimeBasedPolicy{
		window:               NewFixedWindow(cfg.WindowSize, cfg.BucketCount),
		failureThreshold:     cfg.FailureThreshold,
		minCallCount:         cfg.MinCallCount,
		minRecoveryTime:      cfg.MinRecoveryTime,
		consecutiveSuccesses: cfg.ConsecutiveSuccesses,
		clock:                realClock{},
	}
}

// RecordSuccess feeds a success into the policy's window.
func (p *TimeBasedPolicy) RecordSuccess() { p.window.RecordSuccess() }

// RecordFailure feeds a failure into the policy's window.
func (p *TimeBasedPolicy) RecordFailure() { p.window.RecordFailure() }

// ShouldTrip reports whether the windowed error rate has reached the
// threshold and the circuit has seen enough calls overall.
func (p *TimeBasedPolicy) ShouldTrip(stats *Stats) bool {
	return p.window.ErrorRate() >= p.failureThreshold && stats.TotalCalls() >= p.minCallCount
}

// ShouldReset reports whether the success streak has reached its limit and
// the most recent failure is at least the recovery floor in the past.
func (p *TimeBasedPolicy) ShouldReset(stats *Stats) bool {
	if last, ok := stats.LastFailureTime(); ok {
		if p.clock.Now().Sub(last) < p.minRecoveryTime {
			return false
		}
	}
	return stats.ConsecutiveSuccesses() >= p.consecutiveSuccesses
}

func (p *TimeBasedPolicy) setClock(clock Clock) {
	p.clock = clock
	p.window.nowFn = clock.Now
}

// ThroughputAwarePolicyConfig configures NewThroughputAwarePolicy. Zero
// fields take defaults: alpha 0.1 over a 10-call warm-up, the package
// failure threshold, a 1 call/s floor against a 60s divisor and a 0.1
// recovery threshold.
type ThroughputAwarePolicyConfig struct {
	// Alpha is the EMA smoothing factor in (0, 1).
	Alpha float64

	// CallsRequired is the EMA warm-up threshold. Below it the estimate
	// reads zero and the circuit cannot trip.
	CallsRequired uint64

	// FailureThreshold is the EMA error rate that trips the circuit.
	FailureThreshold float64

	// MinThroughputPerSecond is the call rate floor below which the
	// circuit never trips, however bad the error rate.
	MinThroughputPerSecond float64

	// ThroughputWindow is the fixed divisor for the throughput estimate:
	// total calls divided by this many seconds.
	ThroughputWindow time.Duration

	// RecoveryThreshold closes a half-open circuit once the EMA error
	// rate falls to or below it.
	RecoveryThreshold float64
}

// ThroughputAwarePolicy trips on an exponentially weighted error rate, but
// only while the circuit is carrying enough traffic for that rate to mean
// anything. A trickle of failures on an idle circuit stays closed.
type ThroughputAwarePolicy struct {
	ema                    *EMAWindow
	failureThreshold       float64
	minThroughputPerSecond float64
	throughputWindow       time.Duration
	recoveryThreshold      float64
}

// NewThroughputAwarePolicy returns a ThroughputAwarePolicy with zero
// config fields replaced by defaults.
func NewThroughputAwarePolicy(cfg ThroughputAwarePolicyConfig) *ThroughputAwarePolicy {
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.1
	}
	if cfg.CallsRequired == 0 {
		cfg.CallsRequired = 10
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.MinThroughputPerSecond == 0 {
		cfg.MinThroughputPerSecond = 1
	}
	if cfg.ThroughputWindow == 0 {
		cfg.ThroughputWindow = time.Minute
	}
	if cfg.RecoveryThreshold == 0 {
		cfg.RecoveryThreshold = 0.1
	}
	return &ThroughputAwarePolicy{
		ema:                    NewEMAWindow(cfg.Alpha, cfg.CallsRequired),
		failureThreshold:       cfg.FailureThreshold,
		minThroughputPerSecond: cfg.MinThroughputPerSecond,
		throughputWindow:       cfg.ThroughputWindow,
		recoveryThreshold:      cfg.RecoveryThreshold,
	}
}

// RecordSuccess feeds a success into the policy's estimator.
func (p *ThroughputAwarePolicy) RecordSuccess() { p.ema.RecordSuccess() }

// RecordFailure feeds a failure into the policy's estimator.
func (p *ThroughputAwarePolicy) RecordFailure() { p.ema.RecordFailure() }

// ShouldTrip reports whether the estimated error rate has reached the
// threshold while the call rate is above the throughput floor.
func (p *ThroughputAwarePolicy) ShouldTrip(stats *Stats) bool {
	return p.ema.ErrorRate() >= p.failureThreshold && p.throughput(stats) >= p.minThroughputPerSecond
}

// ShouldReset reports whether the estimated error rate has decayed to the
// recovery threshold. Streaks play no part here; in the half-open state
// every probe outcome moves the estimate.
func (p *ThroughputAwarePolicy) ShouldReset(*Stats) bool {
	return p.ema.ErrorRate() <= p.recoveryThreshold
}

func (p *ThroughputAwarePolicy) throughput(stats *Stats) float64 {
	secs := p.throughputWindow.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(stats.TotalCalls()) / secs
}

var (
	_ Policy         = (*DefaultPolicy)(nil)
	_ Policy         = (*TimeBasedPolicy)(nil)
	_ Policy         = (*ThroughputAwarePolicy)(nil)
	_ policyRecorder = (*TimeBasedPolicy)(nil)
	_ policyRecorder = (*ThroughputAwarePolicy)(nil)
	_ clockAware     = (*TimeBasedPolicy)(nil)
)
