package breakertally_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"

	"github.com/switchyard/breaker"
	"github.com/switchyard/breaker/breakertally"
)

func TestSink_RecordStateTransition(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	sink := breakertally.NewSink(scope)

	sink.RecordStateTransition(breaker.Closed, breaker.Open)
	sink.RecordStateTransition(breaker.Open, breaker.HalfOpen)
	sink.RecordStateTransition(breaker.Closed, breaker.Open)

	counters := scope.Snapshot().Counters()

	tripped, ok := counters["breaker.transitions+from=closed,to=open"]
	require.True(t, ok)
	require.Equal(t, int64(2), tripped.Value())

	probing, ok := counters["breaker.transitions+from=open,to=half-open"]
	require.True(t, ok)
	require.Equal(t, int64(1), probing.Value())
}

func TestSink_RecordErrorRate(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	sink := breakertally.NewSink(scope)

	sink.RecordErrorRate(0.75)

	rate, ok := scope.Snapshot().Gauges()["breaker.error_rate+"]
	require.True(t, ok)
	require.Equal(t, 0.75, rate.Value())
}

func TestSink_RecordProbeAttempt(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	sink := breakertally.NewSink(scope)

	sink.RecordProbeAttempt(true)
	sink.RecordProbeAttempt(true)
	sink.RecordProbeAttempt(false)

	counters := scope.Snapshot().Counters()

	granted, ok := counters["breaker.probes+granted=true"]
	require.True(t, ok)
	require.Equal(t, int64(2), granted.Value())

	denied, ok := counters["breaker.probes+granted=false"]
	require.True(t, ok)
	require.Equal(t, int64(1), denied.Value())
}

func TestSink_RecordCall(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	sink := breakertally.NewSink(scope)

	sink.RecordCall(true, 5*time.Millisecond)
	sink.RecordCall(true, 7*time.Millisecond)
	sink.RecordCall(false, 20*time.Millisecond)

	snapshot := scope.Snapshot()
	counters := snapshot.Counters()

	successes, ok := counters["breaker.calls+outcome=success"]
	require.True(t, ok)
	require.Equal(t, int64(2), successes.Value())

	failures, ok := counters["breaker.calls+outcome=failure"]
	require.True(t, ok)
	require.Equal(t, int64(1), failures.Value())

	latency, ok := snapshot.Timers()["breaker.call_latency+"]
	require.True(t, ok)
	require.Len(t, latency.Values(), 3)
	require.Contains(t, latency.Values(), 20*time.Millisecond)
}

func TestSink_ReportsCircuitLifecycle(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	sink := breakertally.NewSink(scope)

	circuit := breaker.New("payments",
		breaker.WithConsecutiveFailures(1),
		breaker.WithMetricSink(sink),
	)

	err := circuit.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, breaker.Open, circuit.State())

	circuit.ForceClosed()

	snapshot := scope.Snapshot()
	counters := snapshot.Counters()

	tripped, ok := counters["breaker.transitions+from=closed,to=open"]
	require.True(t, ok)
	require.Equal(t, int64(1), tripped.Value())

	closed, ok := counters["breaker.transitions+from=open,to=closed"]
	require.True(t, ok)
	require.Equal(t, int64(1), closed.Value())

	failures, ok := counters["breaker.calls+outcome=failure"]
	require.True(t, ok)
	require.Equal(t, int64(1), failures.Value())

	rate, ok := snapshot.Gauges()["breaker.error_rate+"]
	require.True(t, ok)
	require.Equal(t, 1.0, rate.Value())
}
