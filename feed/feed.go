// Package feed provides cancellable, single-producer streams.
//
// A Feed replaces callback-style live subscriptions: the producer goroutine
// pushes values with Send and ends the stream with Finish, the consumer ranges
// over Updates and releases the stream with Close. Err reports why a stream
// ended on its own; a stream closed by its consumer reports no error.
package feed

import (
	"context"
	"sync"
)

type Feed[T any] struct {
	updates chan T
	ctx     context.Context
	cancel  context.CancelFunc

	once sync.Once
	mu   sync.Mutex
	err  error
}

// New creates a feed whose lifetime is bounded by parent.
func New[T any](parent context.Context, buffer int) *Feed[T] {
	ctx, cancel := context.WithCancel(parent)
	return &Feed[T]{
		updates: make(chan T, buffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Updates is closed once the producer finishes.
func (f *Feed[T]) Updates() <-chan T {
	return f.updates
}

// Context is done once the consumer closed the feed or the parent was canceled.
// Producers select on it to stop early.
func (f *Feed[T]) Context() context.Context {
	return f.ctx
}

// Send blocks until v is handed over or the feed is closed.
// It returns false when the producer must stop.
func (f *Feed[T]) Send(v T) bool {
	if f.ctx.Err() != nil {
		return false
	}
	select {
	case f.updates <- v:
		return true
	case <-f.ctx.Done():
		return false
	}
}

// Finish ends the stream. Only the producer calls it, and never Send afterwards.
// An error is kept only if the consumer did not close the feed first.
func (f *Feed[T]) Finish(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		if err != nil && f.ctx.Err() == nil {
			f.err = err
		}
		f.mu.Unlock()
		close(f.updates)
		f.cancel()
	})
}

// Close is the consumer's cancellation token.
func (f *Feed[T]) Close() {
	f.cancel()
}

func (f *Feed[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Map projects every value of src. Values for which fn returns false are skipped.
// Closing the returned feed closes src.
func Map[T, U any](src *Feed[T], fn func(T) (U, bool)) *Feed[U] {
	dst := New[U](context.Background(), cap(src.updates))
	go func() {
		defer src.Close()
		for {
			select {
			case <-dst.ctx.Done():
				dst.Finish(nil)
				return
			case v, ok := <-src.updates:
				if !ok {
					dst.Finish(src.Err())
					return
				}
				u, keep := fn(v)
				if !keep {
					continue
				}
				if !dst.Send(u) {
					dst.Finish(nil)
					return
				}
			}
		}
	}()
	return dst
}
