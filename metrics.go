package breaker

import "time"

// A MetricSink receives breaker telemetry. Implementations must be safe
// for concurrent use and should return quickly; the circuit calls them
// inline on the request path, though never while holding a lock.
//
// The breakertally subpackage provides a sink backed by a tally scope.
type MetricSink interface {
	// RecordStateTransition is called once per completed transition.
	RecordStateTransition(from, to State)

	// RecordErrorRate is called with the observed error rate when the
	// circuit trips.
	RecordErrorRate(rate float64)

	// RecordProbeAttempt is called each time a half-open circuit decides
	// whether to admit a probe. granted is false when the probe budget
	// was spent and the call was rejected.
	RecordProbeAttempt(granted bool)

	// RecordCall is called after every completed call with its outcome
	// and duration.
	RecordCall(success bool, elapsed time.Duration)
}

// NopMetricSink discards all telemetry. It is the sink a Circuit uses when
// none is supplied.
type NopMetricSink struct{}

func (NopMetricSink) RecordStateTransition(from, to State) {}

func (NopMetricSink) RecordErrorRate(rate float64) {}

func (NopMetricSink) RecordProbeAttempt(granted bool) {}

func (NopMetricSink) RecordCall(success bool, elapsed time.Duration) {}

var _ MetricSink = NopMetricSink{}
