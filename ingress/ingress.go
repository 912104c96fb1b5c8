// Package ingress implements the streaming half of the driver: it owns a
// fixed-capacity buffer, feeds it from a transport, and repeatedly hands the
// unconsumed tail to at.Digest, routing each classified unit to either the
// response slot (client-facing) or the URC bus (broadcast), per spec.md §4.2.
package ingress

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/respslot"
	"i4.energy/across/atmodem/urcbus"
)

// ErrOverflow is returned when a write would exceed the ingress buffer's
// fixed capacity without the digester having made any progress to free
// room — the buffer has no automatic growth, per spec.md §5's arena model.
var ErrOverflow = errors.New("ingress: buffer overflow")

// DecodeURC turns a raw URC line (tag included, without its trailing CRLF,
// as carried in at.Result.URC) into the caller's URC sum type U.
type DecodeURC[U any] func(raw []byte) (U, error)

// Ingress owns the receive buffer and the digest-and-route loop for one
// transport. U is the application's URC sum type.
type Ingress[U any] struct {
	grammar at.Grammar
	match   at.URCMatchFunc
	decode  DecodeURC[U]

	respSlot *respslot.Slot[at.Frame]
	urcBus   *urcbus.Bus[U]

	buf []byte // fixed-capacity backing array
	len int    // filled length
}

// New returns an Ingress with the given fixed buffer capacity.
func New[U any](capacity int, grammar at.Grammar, match at.URCMatchFunc, decode DecodeURC[U], respSlot *respslot.Slot[at.Frame], urcBus *urcbus.Bus[U]) *Ingress[U] {
	return &Ingress[U]{
		grammar:  grammar,
		match:    match,
		decode:   decode,
		respSlot: respSlot,
		urcBus:   urcBus,
		buf:      make([]byte, capacity),
	}
}

// WriteBuf returns the unfilled tail of the internal buffer for a reader to
// fill directly, avoiding an extra copy. Call Advance with however many
// bytes were actually written.
func (ig *Ingress[U]) WriteBuf() []byte {
	return ig.buf[ig.len:]
}

// Advance commits n bytes previously written via the slice from WriteBuf.
func (ig *Ingress[U]) Advance(n int) {
	ig.len += n
}

// Write copies p into the buffer's free space, growing the filled length.
// It returns ErrOverflow (and writes nothing) if p does not fit.
func (ig *Ingress[U]) Write(p []byte) (int, error) {
	if len(p) > len(ig.buf)-ig.len {
		return 0, ErrOverflow
	}
	n := copy(ig.buf[ig.len:], p)
	ig.len += n
	return n, nil
}

// TryWrite copies as much of p as fits into the buffer's free space,
// without error, returning how many bytes were actually copied.
func (ig *Ingress[U]) TryWrite(p []byte) int {
	n := copy(ig.buf[ig.len:], p)
	ig.len += n
	return n
}

// ReadFrom performs a single Read from r into the buffer's free space and
// commits whatever was read. It returns ErrOverflow if the buffer is
// already full.
func (ig *Ingress[U]) ReadFrom(r io.Reader) (int, error) {
	if ig.len == len(ig.buf) {
		return 0, ErrOverflow
	}
	n, err := r.Read(ig.buf[ig.len:])
	ig.len += n
	if err != nil {
		return n, errors.Wrap(err, "ingress: read")
	}
	return n, nil
}

// Clear discards all buffered bytes, used after a desync the digester
// cannot recover from on its own.
func (ig *Ingress[U]) Clear() {
	ig.len = 0
}

// digestOnce runs at.Digest against the currently buffered bytes, routes the
// result, and left-shifts the buffer by however many bytes were consumed.
// It returns the bytes consumed and whether a unit was routed, so callers
// can loop until the buffer stops yielding progress.
func (ig *Ingress[U]) digestOnce() (consumed int, routed bool) {
	result, n := at.Digest(ig.buf[:ig.len], ig.grammar, ig.match)
	if n > 0 {
		copy(ig.buf, ig.buf[n:ig.len])
		ig.len -= n
	}

	switch result.Kind {
	case at.ResultNone:
		return n, false
	case at.ResultPrompt:
		ig.deliverFrame(at.PromptFrame(result.Prompt))
		return n, true
	case at.ResultResponse:
		if result.Err != nil {
			ig.deliverFrame(at.ErrorFrame(result.Err))
		} else {
			ig.deliverFrame(at.ResponseFrame(result.Response))
		}
		return n, true
	case at.ResultURC:
		ig.deliverURC(result.URC)
		return n, true
	default:
		return n, false
	}
}

// deliverFrame hands a solicited-response frame to the response slot. A
// frame arriving with no outstanding command (ErrOccupied, or nobody ever
// calls Await) is simply dropped — there is nobody to receive it.
func (ig *Ingress[U]) deliverFrame(f at.Frame) {
	_ = ig.respSlot.Signal(f)
}

func (ig *Ingress[U]) deliverURC(raw []byte) {
	v, err := ig.decode(raw)
	if err != nil {
		return
	}
	_ = ig.urcBus.TryPublish(v)
}

// Pump drains every currently-classifiable unit out of the buffer, routing
// each. It returns once Digest reports ResultNone (needs more bytes).
func (ig *Ingress[U]) Pump() {
	for {
		consumed, routed := ig.digestOnce()
		if consumed == 0 && !routed {
			return
		}
	}
}

// Run reads from r in a loop, pumping the digester after every read. Per
// spec.md §4.2/§7, it is a non-terminating loop: a buffer overflow delivers a
// structured at.KindOverflow error frame through respSlot (so a command
// waiting on it observes a deterministic failure rather than a timeout), and
// any read error clears the buffer and restarts rather than ending the loop.
// Run only returns once ctx is done.
func (ig *Ingress[U]) Run(ctx context.Context, r io.Reader) error {
	type readResult struct {
		n   int
		err error
	}
	reads := make(chan readResult, 1)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		go func() {
			n, err := ig.ReadFrom(r)
			reads <- readResult{n, err}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-reads:
			if res.err != nil {
				ig.handleReadError(res.err)
				continue
			}
			ig.Pump()
		}
	}
}

// handleReadError recovers from a read failure by clearing the buffer so the
// next read starts clean. An overflow additionally signals a deterministic
// at.KindOverflow frame to anyone awaiting the in-flight command's response,
// since the desync means that command's real reply is now unrecoverable.
func (ig *Ingress[U]) handleReadError(err error) {
	if errors.Is(err, ErrOverflow) {
		ig.deliverFrame(at.ErrorFrame(&at.Error{Kind: at.KindOverflow}))
	}
	ig.Clear()
}
