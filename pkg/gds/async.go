package gds

import (
	"context"
	"fmt"
)

// Callback receives the outcome of an asynchronous call. It is invoked
// exactly once: with the result and a nil error, or with the zero value and
// a non-nil error.
type Callback[T any] func(T, error)

// Pending tracks an asynchronous call. Done is closed after the callback
// has returned.
type Pending struct {
	done chan struct{}
}

// Done returns a channel closed once the callback has run.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the callback has run.
func (p *Pending) Wait() { <-p.done }

type outcome[T any] struct {
	val T
	err error
}

// dispatch runs fn on its own goroutine and delivers the outcome to cb.
// If ctx ends first, cb receives a *TransportError wrapping ctx.Err() and the
// late response is dropped.
func dispatch[T any](ctx context.Context, log Logger, op string, fn func(context.Context) (T, error), cb Callback[T]) *Pending {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &Pending{done: make(chan struct{})}
	results := make(chan outcome[T], 1)

	go func() {
		v, err := fn(ctx)
		results <- outcome[T]{val: v, err: err}
	}()

	go func() {
		defer close(p.done)

		var out outcome[T]
		select {
		case out = <-results:
		case <-ctx.Done():
			// Prefer a response that is already there.
			select {
			case out = <-results:
			default:
				out.err = &TransportError{Op: op, Err: ctx.Err()}
			}
		}
		if out.err != nil {
			var zero T
			out.val = zero
		}
		deliver(log, op, cb, out)
	}()

	return p
}

func deliver[T any](log Logger, op string, cb Callback[T], out outcome[T]) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.ErrorObj("gds callback panicked", "gds_callback", map[string]any{
				"op":    op,
				"panic": fmt.Sprint(r),
			})
		}
	}()
	cb(out.val, out.err)
}
