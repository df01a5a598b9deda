// Package breakertally reports breaker telemetry into a tally metrics scope.
package breakertally

import (
	"time"

	"github.com/uber-go/tally/v4"

	"github.com/switchyard/breaker"
)

// Sink forwards breaker telemetry to a tally scope. Emitted metrics, all
// under the "breaker" subscope:
//
//	transitions   counter, tagged from/to
//	error_rate    gauge, updated when the circuit trips
//	probes        counter, tagged granted true/false
//	calls         counter, tagged outcome success/failure
//	call_latency  timer
type Sink struct {
	scope     tally.Scope
	errorRate tally.Gauge
	successes tally.Counter
	failures  tally.Counter
	granted   tally.Counter
	denied    tally.Counter
	latency   tally.Timer
}

// NewSink returns a Sink reporting into scope.
func NewSink(scope tally.Scope) *Sink {
	s := scope.SubScope("breaker")
	return &Sink{
		scope:     s,
		errorRate: s.Gauge("error_rate"),
		successes: s.Tagged(map[string]string{"outcome": "success"}).Counter("calls"),
		failures:  s.Tagged(map[string]string{"outcome": "failure"}).Counter("calls"),
		granted:   s.Tagged(map[string]string{"granted": "true"}).Counter("probes"),
		denied:    s.Tagged(map[string]string{"granted": "false"}).Counter("probes"),
		latency:   s.Timer("call_latency"),
	}
}

// RecordStateTransition counts one transition tagged with its endpoints.
func (s *Sink) RecordStateTransition(from, to breaker.State) {
	s.scope.Tagged(map[string]string{
		"from": from.String(),
		"to":   to.String(),
	}).Counter("transitions").Inc(1)
}

// RecordErrorRate gauges the error rate observed when the circuit trips.
func (s *Sink) RecordErrorRate(rate float64) {
	s.errorRate.Update(rate)
}

// RecordProbeAttempt counts a half-open admission decision.
func (s *Sink) RecordProbeAttempt(granted bool) {
	if granted {
		s.granted.Inc(1)
	} else {
		s.denied.Inc(1)
	}
}

// RecordCall counts one completed call and times it.
func (s *Sink) RecordCall(success bool, elapsed time.Duration) {
	if success {
		s.successes.Inc(1)
	} else {
		s.failures.Inc(1)
	}
	s.latency.Record(elapsed)
}

var _ breaker.MetricSink = (*Sink)(nil)
