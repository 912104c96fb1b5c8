package respslot_test

import (
	"context"
	"testing"
	"time"

	"i4.energy/across/atmodem/respslot"
)

func TestSlotSignalThenAwait(t *testing.T) {
	s := respslot.New[int]()
	if err := s.Signal(42); err != nil {
		t.Fatal(err)
	}
	v, err := s.Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestSlotNonOverwrite(t *testing.T) {
	s := respslot.New[int]()
	if err := s.Signal(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Signal(2); err != respslot.ErrOccupied {
		t.Fatalf("got %v, want ErrOccupied", err)
	}
	v, ok := s.TryGet()
	if !ok || v != 1 {
		t.Fatalf("got (%d, %v), want (1, true): second Signal must not overwrite", v, ok)
	}
}

func TestSlotAwaitBlocksUntilSignal(t *testing.T) {
	s := respslot.New[string]()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		_ = s.Signal("hello")
	}()

	v, err := s.Await(ctx)
	<-done
	if err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Fatalf("got %q", v)
	}
}

func TestSlotAwaitRespectsContextCancellation(t *testing.T) {
	s := respslot.New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Await(ctx)
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestSlotClearDiscardsStaleValue(t *testing.T) {
	s := respslot.New[int]()
	_ = s.Signal(99)
	s.Clear()
	if err := s.Signal(7); err != nil {
		t.Fatalf("Signal after Clear should succeed, got %v", err)
	}
	v, ok := s.TryGet()
	if !ok || v != 7 {
		t.Fatalf("got (%d, %v), want (7, true)", v, ok)
	}
}
