// Package respslot implements the single-producer/single-consumer response
// slot described in spec.md §4.3: at most one outstanding frame at a time,
// with non-overwrite semantics so a stray late write can never clobber a
// frame the consumer hasn't collected yet.
package respslot

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrOccupied is returned by Signal when the slot already holds a frame the
// consumer has not yet drained.
var ErrOccupied = errors.New("respslot: slot already occupied")

// Slot is a one-place rendezvous for a single value of type T. It is safe
// for concurrent use by exactly one producer and one consumer at a time;
// using it with more participants breaks the one-outstanding-command
// invariant it exists to enforce (spec.md §4.3).
type Slot[T any] struct {
	mu       sync.Mutex
	ready    chan struct{}
	value    T
	occupied bool
}

// New returns an empty Slot.
func New[T any]() *Slot[T] {
	return &Slot[T]{ready: make(chan struct{}, 1)}
}

// Signal deposits v into the slot for a waiting consumer to collect. It
// returns ErrOccupied, without overwriting the existing value, if the slot
// is already holding an undelivered frame — the non-overwrite semantics
// spec.md §4.3 requires.
func (s *Slot[T]) Signal(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupied {
		return ErrOccupied
	}
	s.value = v
	s.occupied = true
	select {
	case s.ready <- struct{}{}:
	default:
	}
	return nil
}

// TryGet drains the slot's value without blocking. ok is false if the slot
// is currently empty.
func (s *Slot[T]) TryGet() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.occupied {
		return v, false
	}
	v, s.occupied = s.value, false
	var zero T
	s.value = zero
	select {
	case <-s.ready:
	default:
	}
	return v, true
}

// Await blocks until a value is signaled or ctx is done. A value already
// sitting in the slot is returned at once; discarding a stale value from a
// prior, abandoned wait is Clear's job (client.Client calls it before each
// transmit).
func (s *Slot[T]) Await(ctx context.Context) (T, error) {
	if v, ok := s.TryGet(); ok {
		return v, nil
	}
	select {
	case <-s.ready:
		if v, ok := s.TryGet(); ok {
			return v, nil
		}
		var zero T
		return zero, ctx.Err()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Clear discards any undelivered value, returning the slot to empty. Used
// when a command is abandoned (timeout/cancellation) so a late-arriving
// frame for it doesn't wedge the next command's Await behind ErrOccupied.
func (s *Slot[T]) Clear() {
	s.TryGet()
}
