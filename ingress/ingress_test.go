package ingress_test

import (
	"context"
	"io"
	"testing"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/ingress"
	"i4.energy/across/atmodem/respslot"
	"i4.energy/across/atmodem/urcbus"
)

func decodeRawURC(raw []byte) (string, error) {
	return string(raw), nil
}

func newTestIngress(t *testing.T, capacity int) (*ingress.Ingress[string], *respslot.Slot[at.Frame], *urcbus.Subscriber[string]) {
	t.Helper()
	slot := respslot.New[at.Frame]()
	bus := urcbus.New[string](16)
	sub := bus.Subscribe()
	ig := ingress.New[string](capacity, at.DefaultGrammar(), nil, decodeRawURC, slot, bus)
	return ig, slot, sub
}

func TestIngressRoutesURCBeforeResponse(t *testing.T) {
	ig, slot, sub := newTestIngress(t, 256)

	input := []byte("+UUSORD: 0,5\r\nAT+USORD=0,4\r\r\n+USORD: 0,4,\"90030002\"\r\nOK\r\n")
	if _, err := ig.Write(input); err != nil {
		t.Fatal(err)
	}
	ig.Pump()

	urc, ok := sub.TryNext()
	if !ok || urc != "+UUSORD: 0,5" {
		t.Fatalf("got (%q, %v), want (+UUSORD: 0,5, true)", urc, ok)
	}

	frame, ok := slot.TryGet()
	if !ok {
		t.Fatal("expected a response frame")
	}
	if frame.Kind != at.FrameResponse {
		t.Fatalf("got %v, want FrameResponse", frame)
	}
	want := `+USORD: 0,4,"90030002"`
	if string(frame.Body) != want {
		t.Fatalf("body = %q, want %q", frame.Body, want)
	}
}

func TestIngressOverflowOnWriteThatDoesNotFit(t *testing.T) {
	ig, _, _ := newTestIngress(t, 4)
	if _, err := ig.Write([]byte("way too long")); err != ingress.ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestIngressErrorFrameOnCmeError(t *testing.T) {
	ig, slot, _ := newTestIngress(t, 256)
	input := []byte("AT+USORD=3,16\r\n+USORD: 3,16,\"x\"\r\n+CME ERROR: 123\r\n")
	if _, err := ig.Write(input); err != nil {
		t.Fatal(err)
	}
	ig.Pump()

	frame, ok := slot.TryGet()
	if !ok {
		t.Fatal("expected an error frame")
	}
	if frame.Kind != at.FrameError || frame.Err.Kind != at.KindCmeError || frame.Err.Code != 123 {
		t.Fatalf("got %+v", frame)
	}
}

func TestIngressPromptFrame(t *testing.T) {
	ig, slot, _ := newTestIngress(t, 256)
	input := []byte("AT+USECMNG=0,0,\"Verisign\",1758\r>")
	if _, err := ig.Write(input); err != nil {
		t.Fatal(err)
	}
	ig.Pump()

	frame, ok := slot.TryGet()
	if !ok {
		t.Fatal("expected a prompt frame")
	}
	if frame.Kind != at.FramePrompt || frame.Prompt != '>' {
		t.Fatalf("got %+v", frame)
	}
}

func TestIngressRunDeliversOverflowFrameAndContinues(t *testing.T) {
	// The 12-byte write below fills the buffer exactly, so the next read
	// overflows once.
	ig, slot, _ := newTestIngress(t, 12)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- ig.Run(ctx, pr) }()

	go func() { _, _ = pw.Write([]byte("way too long")) }()

	frame, err := slot.Await(ctx)
	if err != nil {
		t.Fatalf("expected an overflow frame, got err %v", err)
	}
	if frame.Kind != at.FrameError || frame.Err.Kind != at.KindOverflow {
		t.Fatalf("got %+v, want FrameError(Overflow)", frame)
	}

	// Run must still be alive after the overflow, ready to digest whatever
	// comes next instead of having terminated.
	go func() { _, _ = pw.Write([]byte("AT\r\nOK\r\n")) }()
	frame, err = slot.Await(ctx)
	if err != nil {
		t.Fatalf("expected Run to keep servicing reads after overflow, got %v", err)
	}
	if frame.Kind != at.FrameResponse {
		t.Fatalf("got %+v, want FrameResponse", frame)
	}

	cancel()
	if err := <-done; err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestIngressRunStopsOnContextCancellation(t *testing.T) {
	ig, _, _ := newTestIngress(t, 64)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ig.Run(ctx, pr) }()

	cancel()
	if err := <-done; err == nil {
		t.Fatal("expected context cancellation error")
	}
}
