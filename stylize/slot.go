package stylize

import (
	"context"
	"time"
)

// Slot holds at most one value; a new value replaces any unread one
// Safe for one producer and one consumer on different goroutines
type Slot[T any] struct {
	ch chan T
}

// NewSlot creates an empty slot
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Put evicts any pending value and installs v without blocking
// replaced reports an evicted value; ok is false when a racing producer refilled
// the slot first, in which case v is dropped
func (s *Slot[T]) Put(v T) (replaced, ok bool) {
	select {
	case <-s.ch:
		replaced = true
	default:
	}
	select {
	case s.ch <- v:
		return replaced, true
	default:
		return replaced, false
	}
}

// TryTake returns the pending value without blocking
func (s *Slot[T]) TryTake() (T, bool) {
	select {
	case v := <-s.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Take waits up to timeout for a value, returning early when ctx is done
func (s *Slot[T]) Take(ctx context.Context, timeout time.Duration) (T, bool) {
	var zero T
	if ctx.Err() != nil {
		return zero, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-s.ch:
		return v, true
	case <-ctx.Done():
		return zero, false
	case <-timer.C:
		return zero, false
	}
}

// Drain discards the pending value, reporting whether there was one
func (s *Slot[T]) Drain() bool {
	_, ok := s.TryTake()
	return ok
}

// Pending reports whether a value is waiting
func (s *Slot[T]) Pending() bool {
	return len(s.ch) > 0
}
