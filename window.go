package breaker

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// FixedWindow tallies call outcomes over a sliding time window split into
// fixed-size buckets. Outcomes older than the window fall off, so the rate
// it reports reflects recent behavior rather than all of history.
type FixedWindow struct {
	window time.Duration
	bucket time.Duration
	nowFn  func() time.Time

	mu      sync.Mutex
	buckets []windowBucket
}

type windowBucket struct {
	start     time.Time
	successes uint64
	failures  uint64
}

// NewFixedWindow returns a window spanning size, split into count buckets.
// It panics when size or count is not positive.
func NewFixedWindow(size time.Duration, count int) *FixedWindow {
	if size <= 0 {
		panic("breaker: window size must be positive")
	}
	if count <= 0 {
		panic("breaker: bucket count must be positive")
	}
	return &FixedWindow{
		window: size,
		bucket: size / time.Duration(count),
		nowFn:  time.Now,
	}
}

// RecordSuccess adds a success to the current bucket.
func (w *FixedWindow) RecordSuccess() { w.record(true) }

// RecordFailure adds a failure to the current bucket.
func (w *FixedWindow) RecordFailure() { w.record(false) }

func (w *FixedWindow) record(success bool) {
	now := w.nowFn()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.evict(now)

	if n := len(w.buckets); n > 0 && now.Sub(w.buckets[n-1].start) < w.bucket {
		if success {
			w.buckets[n-1].successes++
		} else {
			w.buckets[n-1].failures++
		}
		return
	}

	b := windowBucket{start: now}
	if success {
		b.successes = 1
	} else {
		b.failures = 1
	}
	w.buckets = append(w.buckets, b)
}

// ErrorRate returns failures divided by total calls across the live
// buckets, or 0 when the window is empty.
func (w *FixedWindow) ErrorRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evict(w.nowFn())

	var successes, failures uint64
	for _, b := range w.buckets {
		successes += b.successes
		failures += b.failures
	}
	total := successes + failures
	if total == 0 {
		return 0
	}
	return float64(failures) / float64(total)
}

// evict drops buckets that start before now minus the window span. Callers
// hold mu.
func (w *FixedWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.buckets) && w.buckets[i].start.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.buckets = append(w.buckets[:0], w.buckets[i:]...)
	}
}

// EMAWindow estimates the error rate as an exponentially weighted moving
// average of call outcomes. Recent calls dominate the estimate and the
// weight of older ones decays by alpha with every new sample, so it needs
// no buckets and no eviction.
type EMAWindow struct {
	alpha    float64
	required uint64

	rate  atomic.Float64
	calls atomic.Uint64
}

// NewEMAWindow returns an estimator with smoothing factor alpha in (0, 1).
// The estimate stays at zero until callsRequired outcomes have been seen;
// samples before that point are discarded as warm-up noise. It panics when
// alpha is out of range.
func NewEMAWindow(alpha float64, callsRequired uint64) *EMAWindow {
	if alpha <= 0 || alpha >= 1 {
		panic("breaker: alpha must be within (0, 1)")
	}
	return &EMAWindow{alpha: alpha, required: callsRequired}
}

// RecordSuccess decays the estimate toward zero.
func (w *EMAWindow) RecordSuccess() { w.update(0) }

// RecordFailure decays the estimate toward one.
func (w *EMAWindow) RecordFailure() { w.update(1) }

// update folds one sample into the estimate. The load and store are two
// separate atomic operations, so concurrent updates may read the same
// starting value and drop a sample from the average.
func (w *EMAWindow) update(sample float64) {
	if w.calls.Inc() < w.required {
		return
	}
	cur := w.rate.Load()
	w.rate.Store(cur*(1-w.alpha) + sample*w.alpha)
}

// ErrorRate returns the current estimate, or 0 while warming up.
func (w *EMAWindow) ErrorRate() float64 {
	if w.calls.Load() < w.required {
		return 0
	}
	return w.rate.Load()
}
