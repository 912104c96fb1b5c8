// Package client implements the typed command issuer of spec.md §4.4: a
// state machine that serializes one outstanding command at a time, enforces
// an inter-command cooldown, renders and transmits commands via atcodec,
// and waits for a response under a timeout that can be dynamically extended.
package client

import (
	"context"
	"io"
	"sync"
	"time"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/atcodec"
	"i4.energy/across/atmodem/respslot"
)

// Response is the outcome of a successful round trip: either a final
// response body, or a prompt byte if the command's first reply was a
// prompt (two-stage commands like SMS text entry).
type Response struct {
	Body       []byte
	IsPrompt   bool
	PromptByte byte
}

// Decode parses r.Body into out via atcodec.Decode. An empty body (as
// returned for ExpectsResponseCode == false) only decodes into a struct
// whose positional fields are all optional.
func (r Response) Decode(out any) error {
	return atcodec.Decode(out, r.Body)
}

// Client issues atcodec.Command values one at a time over a transport,
// matching each against the frame the ingress pipeline delivers through
// respSlot. It is safe for concurrent use; calls serialize internally,
// matching the one-outstanding-command discipline of spec.md §4.3/§4.4.
type Client[U any] struct {
	w        io.Writer
	cfg      Config
	respSlot *respslot.Slot[at.Frame]

	mu       sync.Mutex
	lastSend time.Time
}

// New returns a Client writing commands to w, reading responses routed
// through respSlot by a paired ingress.Ingress.
func New[U any](w io.Writer, cfg Config, respSlot *respslot.Slot[at.Frame]) *Client[U] {
	return &Client[U]{w: w, cfg: cfg, respSlot: respSlot}
}

// Send renders cmd, waits out the inter-command cooldown, transmits it, and
// waits for its response under the command's (possibly dynamically
// extended) deadline. If the peer's first reply is a prompt byte (not a
// final result), Send returns it as Response{IsPrompt: true} without
// waiting further — use SendWithBody for two-stage commands.
func (c *Client[U]) Send(ctx context.Context, cmd atcodec.Command) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.waitCooldownLocked(ctx); err != nil {
		return Response{}, err
	}

	c.respSlot.Clear()
	if err := c.transmitLocked(ctx, cmd); err != nil {
		return Response{}, err
	}

	if !cmd.Defaults().ExpectsResponseCode {
		return Response{}, nil
	}

	return c.awaitFrame(ctx, cmd, time.Now())
}

// SendWithBody sends cmd, expects a prompt reply, then writes body
// (typically SMS text followed by Ctrl-Z) and waits for the final result.
// It fails with KindInvalidResponse if the peer's first reply was a final
// result rather than a prompt.
func (c *Client[U]) SendWithBody(ctx context.Context, cmd atcodec.Command, body []byte) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.waitCooldownLocked(ctx); err != nil {
		return Response{}, err
	}

	c.respSlot.Clear()
	if err := c.transmitLocked(ctx, cmd); err != nil {
		return Response{}, err
	}

	first, err := c.awaitFrame(ctx, cmd, time.Now())
	if err != nil {
		return Response{}, err
	}
	if !first.IsPrompt {
		return Response{}, &at.Error{Kind: at.KindInvalidResponse}
	}

	if err := c.writeWithTimeout(ctx, body); err != nil {
		return Response{}, err
	}
	c.lastSend = time.Now()

	return c.awaitFrame(ctx, cmd, time.Now())
}

func (c *Client[U]) transmitLocked(ctx context.Context, cmd atcodec.Command) error {
	line, err := atcodec.Encode(cmd)
	if err != nil {
		return &at.Error{Kind: at.KindParse}
	}
	if err := c.writeWithTimeout(ctx, []byte(line+at.CRLF)); err != nil {
		return err
	}
	c.lastSend = time.Now()
	return nil
}

// waitCooldownLocked blocks until at least cfg.Cooldown has elapsed since
// the previous command completed (its reply arrived or its wait ended).
func (c *Client[U]) waitCooldownLocked(ctx context.Context) error {
	if c.lastSend.IsZero() {
		return nil
	}
	remaining := c.cfg.Cooldown - time.Since(c.lastSend)
	if remaining <= 0 {
		return nil
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return &at.Error{Kind: at.KindAborted}
	}
}

// writeWithTimeout writes p to the transport, bounded by both ctx and the
// configured TxTimeout, following the goroutine-race idiom the teacher uses
// for dial cancellation (modem/transport.go).
func (c *Client[U]) writeWithTimeout(ctx context.Context, p []byte) error {
	wctx, cancel := context.WithTimeout(ctx, c.cfg.TxTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.w.Write(p)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return &at.Error{Kind: at.KindWrite}
		}
		return nil
	case <-wctx.Done():
		if ctx.Err() != nil {
			return &at.Error{Kind: at.KindAborted}
		}
		return &at.Error{Kind: at.KindTimeout}
	}
}

// awaitFrame polls respSlot under cmd's (possibly dynamically extended)
// deadline, re-evaluating cfg.DeadlineHook each time the current timeout
// elapses, per spec.md §4.4.
func (c *Client[U]) awaitFrame(ctx context.Context, cmd atcodec.Command, start time.Time) (Response, error) {
	defer func() { c.lastSend = time.Now() }() // cooldown runs from completion
	for {
		elapsed := time.Since(start)
		timeout := c.deadlineFor(cmd, elapsed)
		remaining := timeout - elapsed
		if remaining <= 0 {
			return Response{}, &at.Error{Kind: at.KindTimeout}
		}

		wctx, cancel := context.WithTimeout(ctx, remaining)
		frame, err := c.respSlot.Await(wctx)
		cancel()

		if err == nil {
			return frameToResponse(frame)
		}
		if ctx.Err() != nil {
			return Response{}, &at.Error{Kind: at.KindAborted}
		}
		// deadline elapsed for this poll; loop to re-evaluate the hook
	}
}

func (c *Client[U]) deadlineFor(cmd atcodec.Command, elapsed time.Duration) time.Duration {
	base := cmd.Defaults().MaxTimeout
	if base <= 0 {
		base = c.cfg.ResponseTimeout
	}
	if c.cfg.DeadlineHook != nil {
		if ext := c.cfg.DeadlineHook(cmd, elapsed); ext > base {
			base = ext
		}
	}
	return base
}

func frameToResponse(f at.Frame) (Response, error) {
	switch f.Kind {
	case at.FrameResponse:
		return Response{Body: f.Body}, nil
	case at.FramePrompt:
		return Response{IsPrompt: true, PromptByte: f.Prompt}, nil
	case at.FrameError:
		return Response{}, f.Err
	default:
		return Response{}, &at.Error{Kind: at.KindInvalidResponse}
	}
}
