// Package buffers wires a transport.Transport to a matched pair of
// ingress.Ingress and client.Client sharing one respslot.Slot and
// urcbus.Bus, and runs the receive loop alongside caller goroutines under a
// single errgroup.Group so an error from any caller goroutine cancels the
// whole session.
package buffers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/client"
	"i4.energy/across/atmodem/ingress"
	"i4.energy/across/atmodem/respslot"
	"i4.energy/across/atmodem/transport"
	"i4.energy/across/atmodem/urcbus"
)

// Session bundles a live Client and Ingress pair bound to the same
// transport, plus the means to run the ingress read loop and react to its
// termination.
type Session[U any] struct {
	Client  *client.Client[U]
	Ingress *ingress.Ingress[U]
	URCBus  *urcbus.Bus[U]

	tr transport.Transport
}

// New constructs a Session: an Ingress reading from tr and routing into a
// fresh respslot.Slot/urcbus.Bus pair, and a Client writing to tr and
// waiting on that same slot.
func New[U any](tr transport.Transport, cfg client.Config, grammar at.Grammar, match at.URCMatchFunc, decode ingress.DecodeURC[U]) *Session[U] {
	slot := respslot.New[at.Frame]()
	bus := urcbus.New[U](cfg.URCBacklog)
	ig := ingress.New[U](cfg.IngressBufSize, grammar, match, decode, slot, bus)
	c := client.New[U](tr, cfg, slot)

	return &Session[U]{
		Client:  c,
		Ingress: ig,
		URCBus:  bus,
		tr:      tr,
	}
}

// Run starts the ingress read loop against tr under ctx and blocks until it
// exits: when ctx is cancelled or one of the extra functions returns an
// error. Read errors do not end it (ingress.Ingress.Run clears and keeps
// reading). It also
// closes the transport on exit so any goroutine still blocked in Client.Send
// observes a write failure rather than hanging.
func (s *Session[U]) Run(ctx context.Context, extra ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Ingress.Run(gctx, s.tr)
	})
	for _, fn := range extra {
		g.Go(func() error { return fn(gctx) })
	}

	err := g.Wait()
	_ = s.tr.Close()
	s.URCBus.Close()
	return err
}
