package main

import (
	"context"
	"os"
)

// runInterruptible runs fn and cancels its context when a signal arrives.
// It always waits for fn to return, so at most one call is ever in flight.
func runInterruptible[T any](signals <-chan os.Signal, fn func(ctx context.Context) T) (T, bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case v := <-done:
		return v, false
	case <-signals:
		cancel()
		<-done
		var zero T
		return zero, true
	}
}
