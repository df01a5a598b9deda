package breaker_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchyard/breaker"
)

func TestStats_ZeroValueIsReady(t *testing.T) {
	var s breaker.Stats

	require.Zero(t, s.TotalCalls())
	require.Zero(t, s.ErrorRate(), "expected 0, not NaN, with no calls")

	_, ok := s.LastFailureTime()
	require.False(t, ok)
	_, ok = s.LastSuccessTime()
	require.False(t, ok)
}

func TestStats_RecordsOutcomesAndStreaks(t *testing.T) {
	var s breaker.Stats

	s.RecordFailure()
	s.RecordFailure()
	s.RecordSuccess()

	require.Equal(t, uint64(2), s.FailureCount())
	require.Equal(t, uint64(1), s.SuccessCount())
	require.Equal(t, uint64(3), s.TotalCalls())
	require.Equal(t, uint64(1), s.ConsecutiveSuccesses())
	require.Zero(t, s.ConsecutiveFailures(), "expected the failure streak to clear on success")
	require.InDelta(t, 2.0/3.0, s.ErrorRate(), 1e-9)

	last, ok := s.LastSuccessTime()
	require.True(t, ok)
	require.False(t, last.IsZero())
}

func TestStats_CountsSnapshot(t *testing.T) {
	var s breaker.Stats

	s.RecordSuccess()
	s.RecordFailure()

	require.Equal(t, breaker.Counts{
		Successes:            1,
		Failures:             1,
		Total:                2,
		ConsecutiveFailures:  1,
		ConsecutiveSuccesses: 0,
	}, s.Counts())
}

func TestStats_ResetClearsEverything(t *testing.T) {
	var s breaker.Stats

	s.RecordFailure()
	s.RecordSuccess()
	s.Reset()

	require.Zero(t, s.TotalCalls())
	require.Zero(t, s.ErrorRate())

	_, ok := s.LastSuccessTime()
	require.False(t, ok)
	_, ok = s.LastFailureTime()
	require.False(t, ok)
}

func TestStats_TotalMatchesUnderConcurrency(t *testing.T) {
	var s breaker.Stats

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.RecordSuccess()
				s.RecordFailure()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(8000), s.SuccessCount())
	require.Equal(t, uint64(8000), s.FailureCount())
	require.Equal(t, uint64(16000), s.TotalCalls())
	require.InDelta(t, 0.5, s.ErrorRate(), 1e-9)
}
