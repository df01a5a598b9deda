package breaker

import "context"

// Run executes fn and returns its result with circuit breaker protection.
// This is a convenience wrapper for functions that return a value.
func Run[T any](ctx context.Context, c *Circuit, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := c.Do(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

// Go executes fn with circuit breaker protection without blocking the
// caller. The returned channel receives the outcome of the one call; it is
// buffered, so abandoning it does not leak the goroutine.
func (c *Circuit) Go(ctx context.Context, fn Func) <-chan error {
	errc := make(chan error, 1)
	go func() {
		errc <- c.Do(ctx, fn)
	}()
	return errc
}
