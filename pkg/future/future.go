// Package future provides a single-assignment asynchronous result. It is the
// one shape used for every deferred value in dorf: async option sources,
// async validators and stream-like sources collapsed to their first value.
package future

import (
	"context"
	"errors"
	"sync"
)

// ErrSourceClosed is returned when a channel source closes before emitting.
var ErrSourceClosed = errors.New("future: source closed without a value")

// Future holds a value or an error that becomes available once. The zero
// value is not usable; construct futures with New, Resolved, Failed, Go or
// FromChannel.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New returns a pending future settled later through Resolve or Reject.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already settled with value.
func Resolved[T any](value T) *Future[T] {
	f := New[T]()
	f.Resolve(value)
	return f
}

// Failed returns a future already settled with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Go runs fn on a new goroutine and settles the future with its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		value, err := fn(ctx)
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(value)
	}()
	return f
}

// FromChannel settles with the first value received from ch. A closed channel
// rejects with ErrSourceClosed; a cancelled ctx rejects with ctx.Err().
func FromChannel[T any](ctx context.Context, ch <-chan T) *Future[T] {
	f := New[T]()
	go func() {
		select {
		case value, ok := <-ch:
			if !ok {
				f.Reject(ErrSourceClosed)
				return
			}
			f.Resolve(value)
		case <-ctx.Done():
			f.Reject(ctx.Err())
		}
	}()
	return f
}

// Resolve settles the future with value. It reports false when the future
// was already settled.
func (f *Future[T]) Resolve(value T) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		settled = true
		close(f.done)
	})
	return settled
}

// Reject settles the future with err. It reports false when the future was
// already settled.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		err = errors.New("future: rejected with nil error")
	}
	settled := false
	f.once.Do(func() {
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is cancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the settled result without blocking. settled is false while
// the future is pending.
func (f *Future[T]) Peek() (value T, settled bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}
