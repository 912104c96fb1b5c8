// Package urcbus implements the bounded, multi-subscriber URC broadcast
// channel of spec.md §4.3: every Subscriber sees every published value,
// each tracked by its own cursor, with a bounded backlog so a slow or
// abandoned subscriber cannot grow memory without limit.
package urcbus

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrFull is returned by TryPublish when the backlog has reached capacity
// and the slowest live subscriber has not yet caught up.
var ErrFull = errors.New("urcbus: backlog full")

// Bus is a bounded multi-subscriber broadcast channel for URCs of type T.
// The zero value is not usable; use New.
type Bus[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	cap     int
	backlog []T
	base    int // sequence number of backlog[0]
	closed  bool
	subs    []*Subscriber[T]
}

// New returns a Bus retaining at most capacity unread items behind the
// slowest live subscriber before Publish blocks (or TryPublish reports
// ErrFull).
func New[T any](capacity int) *Bus[T] {
	if capacity <= 0 {
		capacity = 1
	}
	b := &Bus[T]{cap: capacity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish blocks until there is room in the backlog (or ctx is done) and
// then appends v, waking all subscribers.
func (b *Bus[T]) Publish(ctx context.Context, v T) error {
	b.mu.Lock()
	for len(b.backlog) >= b.cap && !b.closed {
		if ctx.Err() != nil {
			b.mu.Unlock()
			return ctx.Err()
		}
		// sync.Cond has no context-aware wait; a watcher goroutine below
		// nudges us on cancellation.
		waitCh := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-waitCh:
			}
		}()
		b.cond.Wait()
		close(waitCh)
	}
	if b.closed {
		b.mu.Unlock()
		return errors.New("urcbus: closed")
	}
	b.backlog = append(b.backlog, v)
	b.cond.Broadcast()
	b.mu.Unlock()
	return nil
}

// TryPublish appends v without blocking, returning ErrFull if the backlog
// is already at capacity.
func (b *Bus[T]) TryPublish(v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("urcbus: closed")
	}
	if len(b.backlog) >= b.cap {
		return ErrFull
	}
	b.backlog = append(b.backlog, v)
	b.cond.Broadcast()
	return nil
}

// Close wakes every blocked Publish/Subscriber.Next call with an error,
// signaling no more values will ever arrive.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Subscribe returns a new Subscriber starting from the current tail of the
// backlog: it will only observe values published after this call.
func (b *Bus[T]) Subscribe() *Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &Subscriber[T]{bus: b, cursor: b.base + len(b.backlog)}
	b.subs = append(b.subs, s)
	return s
}

// Unsubscribe removes s from the live-subscriber set, letting the bus
// reclaim backlog entries only it was still holding back.
func (b *Bus[T]) Unsubscribe(s *Subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	b.trimLocked()
	b.cond.Broadcast()
}

// trimLocked drops the backlog prefix every remaining live subscriber has
// already consumed. Caller must hold b.mu.
func (b *Bus[T]) trimLocked() {
	if len(b.subs) == 0 {
		// no subscribers at all: nothing is pinning the backlog.
		b.base += len(b.backlog)
		b.backlog = b.backlog[:0]
		return
	}
	min := b.subs[0].cursor
	for _, s := range b.subs[1:] {
		if s.cursor < min {
			min = s.cursor
		}
	}
	drop := min - b.base
	if drop <= 0 {
		return
	}
	if drop > len(b.backlog) {
		drop = len(b.backlog)
	}
	b.backlog = append(b.backlog[:0], b.backlog[drop:]...)
	b.base += drop
}

// Subscriber reads URCs from a Bus starting at the point it was created,
// independent of every other subscriber's progress.
type Subscriber[T any] struct {
	bus    *Bus[T]
	cursor int
}

// Next blocks until a value at or after the subscriber's cursor is
// available, or ctx is done.
func (s *Subscriber[T]) Next(ctx context.Context) (T, error) {
	b := s.bus
	b.mu.Lock()
	for {
		idx := s.cursor - b.base
		if idx < len(b.backlog) {
			v := b.backlog[idx]
			s.cursor++
			b.trimLocked()
			b.cond.Broadcast()
			b.mu.Unlock()
			return v, nil
		}
		if b.closed {
			b.mu.Unlock()
			var zero T
			return zero, errors.New("urcbus: closed")
		}
		if ctx.Err() != nil {
			b.mu.Unlock()
			var zero T
			return zero, ctx.Err()
		}
		waitCh := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-waitCh:
			}
		}()
		b.cond.Wait()
		close(waitCh)
	}
}

// TryNext returns the next value without blocking, or ok=false if none is
// currently available.
func (s *Subscriber[T]) TryNext() (v T, ok bool) {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := s.cursor - b.base
	if idx < 0 || idx >= len(b.backlog) {
		return v, false
	}
	v = b.backlog[idx]
	s.cursor++
	b.trimLocked()
	return v, true
}
