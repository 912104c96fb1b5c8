// Package transport defines the byte-stream abstraction the ingress/client
// pair is driven over, and a Dialer that opens one against a real serial
// port (spec.md's "External Interfaces", the modem-facing byte stream).
package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=mock_transport.go -package=transport

// Transport represents an established, bidirectional byte stream to an AT
// modem. A Transport is assumed to be already connected; it provides only
// the low-level I/O primitives used by ingress.Ingress and client.Client.
// Implementations include serial ports, TCP connections to emulators, and
// in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to an AT modem. It abstracts how the connection
// is created (serial port, TCP emulator, test double) and is used only
// during construction; once a Transport is obtained, the Dialer is no
// longer needed.
type Dialer interface {
	// Dial opens and returns a connected Transport. It may block and should
	// respect ctx cancellation. Dial returns an error if the transport
	// cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens an AT modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the OS device path (e.g. "/dev/ttyUSB0", "COM3").
	PortName string
	// Mode configures the serial port (baud, parity, etc). If nil, the
	// library defaults apply.
	Mode *serial.Mode
}

// Dial opens the serial port, racing the open against ctx cancellation
// since serial.Open does not itself accept a context.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("transport: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("transport: context is nil")
	}

	type result struct {
		p   serial.Port
		err error
	}
	ch := make(chan result, 1)

	go func() {
		p, err := serial.Open(d.PortName, d.Mode)
		ch <- result{p: p, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			r := <-ch
			if r.err == nil && r.p != nil {
				_ = r.p.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("transport: open serial port %q: %w", d.PortName, r.err)
		}
		return r.p, nil
	}
}
