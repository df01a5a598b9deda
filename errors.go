package breaker

import "errors"

// ErrOpen is returned when the circuit is open and rejecting requests. A
// half-open circuit returns it too once the probe budget for the current
// recovery attempt is spent.
var ErrOpen = errors.New("circuit open")

// ErrInternal marks a failure of the breaker's own bookkeeping rather than
// of the wrapped function. No code path produces it under correct use; it
// is the stable sentinel such a failure would wrap.
var ErrInternal = errors.New("circuit internal error")

// IsOpen reports whether err is because the circuit is open.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// IsInternal reports whether err originated inside the breaker.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
