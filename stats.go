package breaker

import (
	"time"

	"go.uber.org/atomic"
)

// Stats tracks call outcomes for a circuit. Every field is updated with an
// independent atomic operation, so a reader racing a writer may see one
// counter from before an update and another from after it. Each individual
// value is exact; cross-field snapshots are approximate.
//
// The zero value is ready to use and stamps event times from the wall
// clock.
type Stats struct {
	successes            atomic.Uint64
	failures             atomic.Uint64
	total                atomic.Uint64
	consecutiveSuccesses atomic.Uint64
	consecutiveFailures  atomic.Uint64

	// Event times in nanoseconds since the Unix epoch. Zero means never.
	lastSuccess atomic.Int64
	lastFailure atomic.Int64

	clock Clock
}

func newStats(clock Clock) *Stats {
	return &Stats{clock: clock}
}

func (s *Stats) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}

// RecordSuccess counts one successful call, extends the success streak and
// clears the failure streak.
func (s *Stats) RecordSuccess() {
	s.successes.Inc()
	s.consecutiveSuccesses.Inc()
	s.consecutiveFailures.Store(0)
	s.total.Inc()
	s.lastSuccess.Store(s.now().UnixNano())
}

// RecordFailure counts one failed call, extends the failure streak and
// clears the success streak.
func (s *Stats) RecordFailure() {
	s.failures.Inc()
	s.consecutiveFailures.Inc()
	s.consecutiveSuccesses.Store(0)
	s.total.Inc()
	s.lastFailure.Store(s.now().UnixNano())
}

// ErrorRate returns failures divided by total calls, or 0 when nothing has
// been recorded yet.
func (s *Stats) ErrorRate() float64 {
	total := s.total.Load()
	if total == 0 {
		return 0
	}
	return float64(s.failures.Load()) / float64(total)
}

// SuccessCount returns the number of successful calls recorded.
func (s *Stats) SuccessCount() uint64 { return s.successes.Load() }

// FailureCount returns the number of failed calls recorded.
func (s *Stats) FailureCount() uint64 { return s.failures.Load() }

// TotalCalls returns the number of completed calls recorded.
func (s *Stats) TotalCalls() uint64 { return s.total.Load() }

// ConsecutiveSuccesses returns the length of the current success streak.
func (s *Stats) ConsecutiveSuccesses() uint64 { return s.consecutiveSuccesses.Load() }

// ConsecutiveFailures returns the length of the current failure streak.
func (s *Stats) ConsecutiveFailures() uint64 { return s.consecutiveFailures.Load() }

// LastSuccessTime returns the time of the most recent success. The second
// return is false when no success has been recorded.
func (s *Stats) LastSuccessTime() (time.Time, bool) {
	ns := s.lastSuccess.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// LastFailureTime returns the time of the most recent failure. The second
// return is false when no failure has been recorded.
func (s *Stats) LastFailureTime() (time.Time, bool) {
	ns := s.lastFailure.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// Reset clears every counter, streak and event time.
func (s *Stats) Reset() {
	s.successes.Store(0)
	s.failures.Store(0)
	s.total.Store(0)
	s.consecutiveSuccesses.Store(0)
	s.consecutiveFailures.Store(0)
	s.lastSuccess.Store(0)
	s.lastFailure.Store(0)
}

// Counts is a point-in-time copy of the call statistics.
type Counts struct {
	Successes            uint64
	Failures             uint64
	Total                uint64
	ConsecutiveSuccesses uint64
	ConsecutiveFailures  uint64
}

// Counts returns a snapshot of the call statistics. The fields are loaded
// one at a time, so a snapshot taken during concurrent calls is only
// approximately consistent across fields.
func (s *Stats) Counts() Counts {
	return Counts{
		Successes:            s.successes.Load(),
		Failures:             s.failures.Load(),
		Total:                s.total.Load(),
		ConsecutiveSuccesses: s.consecutiveSuccesses.Load(),
		ConsecutiveFailures:  s.consecutiveFailures.Load(),
	}
}
