package query

import "context"

// Await runs q through r and blocks until its outcome is delivered or ctx is
// done. It is for callers that need a one-shot fetch without their own Loop.
func Await[T any](ctx context.Context, r *Runner, q Query[T]) (T, error) {
	loop := NewLoop()
	defer loop.Close()

	var (
		value T
		err   error
		done  bool
	)
	StartContext(ctx, r, loop, q, Callbacks[T]{
		Result: func(v T) { value, done = v, true },
		Error:  func(e error) { err, done = e, true },
	})

	if runErr := loop.RunUntil(ctx, func() bool { return done }); runErr != nil {
		var zero T
		return zero, runErr
	}
	return value, err
}
