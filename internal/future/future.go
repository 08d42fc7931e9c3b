package future

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrAlreadyResolved = errors.New("signal already resolved")

type Resolver[V any] func(value V)

// A Signal is a single-use rendezvous that hands a value from the goroutine that produces it
// to whoever is waiting on it. It is resolved exactly once; resolving it again panics.
// Internally it rides on a cancelable context whose cause carries the value.
type Signal[V any] struct {
	ctx      context.Context
	resolved atomic.Bool
}

// Done returns a channel that is closed once the signal has been resolved.
func (s *Signal[V]) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Completed reports whether the signal has been resolved, without blocking.
func (s *Signal[V]) Completed() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Wait blocks until the signal is resolved and returns its value.
func (s *Signal[V]) Wait() V {
	<-s.ctx.Done()
	resolution := context.Cause(s.ctx).(*resolution[V])
	return resolution.value
}

func NewSignal[V any]() (*Signal[V], Resolver[V]) {
	ctx, cancel := context.WithCancelCause(context.Background())
	signal := &Signal[V]{
		ctx: ctx,
	}
	return signal, func(value V) {
		if !signal.resolved.CompareAndSwap(false, true) {
			panic(ErrAlreadyResolved)
		}
		cancel(&resolution[V]{
			value: value,
		})
	}
}

type resolution[V any] struct {
	value V
}

func (r *resolution[V]) Error() string {
	return fmt.Sprintf("signal resolved: %v", r.value)
}
