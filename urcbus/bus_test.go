package urcbus_test

import (
	"context"
	"testing"
	"time"

	"i4.energy/across/atmodem/urcbus"
)

func TestBusEachSubscriberSeesEveryValue(t *testing.T) {
	b := urcbus.New[string](4)
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	if err := b.TryPublish("a"); err != nil {
		t.Fatal(err)
	}
	if err := b.TryPublish("b"); err != nil {
		t.Fatal(err)
	}

	for _, s := range []*urcbus.Subscriber[string]{s1, s2} {
		v, ok := s.TryNext()
		if !ok || v != "a" {
			t.Fatalf("got (%q, %v), want (a, true)", v, ok)
		}
		v, ok = s.TryNext()
		if !ok || v != "b" {
			t.Fatalf("got (%q, %v), want (b, true)", v, ok)
		}
		if _, ok := s.TryNext(); ok {
			t.Fatal("expected no more values")
		}
	}
}

func TestBusLateSubscriberMissesPriorValues(t *testing.T) {
	b := urcbus.New[int](4)
	if err := b.TryPublish(1); err != nil {
		t.Fatal(err)
	}
	s := b.Subscribe()
	if err := b.TryPublish(2); err != nil {
		t.Fatal(err)
	}
	v, ok := s.TryNext()
	if !ok || v != 2 {
		t.Fatalf("got (%d, %v), want (2, true)", v, ok)
	}
}

func TestBusTryPublishFullReportsErrFull(t *testing.T) {
	b := urcbus.New[int](2)
	s := b.Subscribe()
	_ = s // keep subscriber alive so backlog isn't trimmed away

	if err := b.TryPublish(1); err != nil {
		t.Fatal(err)
	}
	if err := b.TryPublish(2); err != nil {
		t.Fatal(err)
	}
	if err := b.TryPublish(3); err != urcbus.ErrFull {
		t.Fatalf("got %v, want ErrFull", err)
	}
}

func TestBusNextBlocksUntilPublish(t *testing.T) {
	b := urcbus.New[string](4)
	s := b.Subscribe()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = b.TryPublish("hi")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := s.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v != "hi" {
		t.Fatalf("got %q", v)
	}
}

func TestBusTrimReclaimsSpaceAfterConsumption(t *testing.T) {
	b := urcbus.New[int](2)
	s := b.Subscribe()

	if err := b.TryPublish(1); err != nil {
		t.Fatal(err)
	}
	if err := b.TryPublish(2); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.TryNext(); !ok {
		t.Fatal("expected value")
	}
	if _, ok := s.TryNext(); !ok {
		t.Fatal("expected value")
	}
	// both consumed by the only subscriber: backlog should be trimmed,
	// freeing capacity for more publishes.
	if err := b.TryPublish(3); err != nil {
		t.Fatalf("expected room after trim, got %v", err)
	}
	if err := b.TryPublish(4); err != nil {
		t.Fatalf("expected room after trim, got %v", err)
	}
}
