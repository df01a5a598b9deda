package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindow_RateOverMixedOutcomes(t *testing.T) {
	clk := newStubClock()
	w := NewFixedWindow(time.Second, 10)
	w.nowFn = clk.Now

	require.Zero(t, w.ErrorRate(), "expected 0 on an empty window")

	w.RecordFailure()
	w.RecordFailure()
	w.RecordSuccess()
	w.RecordSuccess()

	require.InDelta(t, 0.5, w.ErrorRate(), 1e-9)
}

func TestFixedWindow_EvictsOutcomesOlderThanWindow(t *testing.T) {
	clk := newStubClock()
	w := NewFixedWindow(time.Second, 10)
	w.nowFn = clk.Now

	w.RecordFailure()
	require.InDelta(t, 1.0, w.ErrorRate(), 1e-9)

	clk.advance(1100 * time.Millisecond)

	require.Zero(t, w.ErrorRate(), "expected the failure to age out")

	w.RecordSuccess()
	require.Zero(t, w.ErrorRate())
}

func TestFixedWindow_RollsIntoNewBuckets(t *testing.T) {
	clk := newStubClock()
	w := NewFixedWindow(time.Second, 10)
	w.nowFn = clk.Now

	w.RecordFailure()
	clk.advance(150 * time.Millisecond)
	w.RecordSuccess()

	require.Len(t, w.buckets, 2, "expected a fresh bucket past the 100ms bucket span")
	require.InDelta(t, 0.5, w.ErrorRate(), 1e-9)
}

func TestFixedWindow_ReusesCurrentBucket(t *testing.T) {
	clk := newStubClock()
	w := NewFixedWindow(time.Second, 10)
	w.nowFn = clk.Now

	w.RecordFailure()
	clk.advance(50 * time.Millisecond)
	w.RecordFailure()

	require.Len(t, w.buckets, 1)
	require.InDelta(t, 1.0, w.ErrorRate(), 1e-9)
}

func TestFixedWindow_PanicsOnInvalidArgs(t *testing.T) {
	require.Panics(t, func() { NewFixedWindow(0, 10) })
	require.Panics(t, func() { NewFixedWindow(time.Second, 0) })
}

func TestEMAWindow_DecaysTowardRecentOutcomes(t *testing.T) {
	w := NewEMAWindow(0.5, 1)

	require.Zero(t, w.ErrorRate())

	w.RecordFailure()
	require.InDelta(t, 0.5, w.ErrorRate(), 1e-9)

	w.RecordSuccess()
	require.InDelta(t, 0.25, w.ErrorRate(), 1e-9)

	w.RecordFailure()
	require.InDelta(t, 0.625, w.ErrorRate(), 1e-9)
}

func TestEMAWindow_DiscardsWarmupSamples(t *testing.T) {
	w := NewEMAWindow(0.5, 3)

	w.RecordFailure()
	w.RecordFailure()
	require.Zero(t, w.ErrorRate(), "expected 0 during warm-up")

	w.RecordFailure()
	require.InDelta(t, 0.5, w.ErrorRate(), 1e-9, "expected only the third sample to count")
}

func TestEMAWindow_PanicsOnInvalidAlpha(t *testing.T) {
	require.Panics(t, func() { NewEMAWindow(0, 1) })
	require.Panics(t, func() { NewEMAWindow(1, 1) })
	require.Panics(t, func() { NewEMAWindow(-0.5, 1) })
}
