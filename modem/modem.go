// Package modem composes the driver's core packages (transport, client,
// ingress, atcmd) into the connect/init/use lifecycle a GSM modem caller
// wants: dial, bring the modem into a known state, issue typed commands,
// and tear down cleanly. It replaces the teacher's hand-rolled
// bufio.Scanner + string-matching exec() loop with client.Client driven
// over a real buffers.Session.
package modem

import (
	"context"
	"fmt"
	"time"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/atcmd"
	"i4.energy/across/atmodem/atcodec"
	"i4.energy/across/atmodem/buffers"
	"i4.energy/across/atmodem/client"
)

// Modem is a connected, initialized GSM modem session. It is safe for
// concurrent use; Client.Send serializes commands internally.
type Modem struct {
	cfg     Config
	session *buffers.Session[atcmd.Urc]
	cancel  context.CancelFunc
	runDone chan error
	closed  bool
}

// New dials cfg.Dialer, starts the ingress/client pipeline, and runs the
// standard init sequence: wake-up, echo mode, verbose errors, SIM PIN
// handling, SMS text mode. It returns an error (and tears everything back
// down) if any required step fails.
func New(ctx context.Context, cfg Config) (*Modem, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tr, err := cfg.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("modem: dial: %w", err)
	}

	ccfg, err := client.NewConfigBuilder(
		client.WithCooldown(cfg.MinSendInterval),
		client.WithResponseTimeout(cfg.ATTimeout),
	)
	if err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("modem: build client config: %w", err)
	}

	sess := buffers.New[atcmd.Urc](tr, ccfg, at.DefaultGrammar(), nil, atcmd.DecodeURC)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(runCtx) }()

	m := &Modem{cfg: cfg, session: sess, cancel: cancel, runDone: done}

	initCtx, initCancel := context.WithTimeout(ctx, cfg.InitTimeout)
	defer initCancel()

	if err := m.init(initCtx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Client exposes the underlying typed command issuer for callers that need
// commands beyond the init sequence and SendSMS.
func (m *Modem) Client() *client.Client[atcmd.Urc] {
	return m.session.Client
}

// Session exposes the URC bus and ingress/client pair directly, for callers
// that want to subscribe to unsolicited codes.
func (m *Modem) Session() *buffers.Session[atcmd.Urc] {
	return m.session
}

func (m *Modem) init(ctx context.Context) error {
	if err := m.sendRetrying(ctx, atcmd.AT(), m.cfg.MaxRetries+1); err != nil {
		return fmt.Errorf("modem: not responding: %w", err)
	}

	if m.cfg.EchoOn {
		_, _ = m.session.Client.Send(ctx, atcmd.EchoOn()) // best effort
	} else if _, err := m.session.Client.Send(ctx, atcmd.EchoOff()); err != nil {
		return fmt.Errorf("modem: disable echo: %w", err)
	}

	_, _ = m.session.Client.Send(ctx, atcmd.VerboseErrors()) // not all modems support it

	status, err := m.queryCPIN(ctx)
	if err != nil {
		return fmt.Errorf("modem: query SIM status: %w", err)
	}

	switch status.Code {
	case "READY":
		// proceed

	case "SIM PIN":
		if m.cfg.SimPIN == "" {
			return ErrSIMPinRequired
		}
		if _, err := m.session.Client.Send(ctx, atcmd.CPINEnter{PIN: m.cfg.SimPIN}); err != nil {
			return fmt.Errorf("modem: enter SIM PIN: %w", err)
		}
		if err := m.waitForSIMReady(ctx); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSIMState, status.Code)
	}

	if _, err := m.session.Client.Send(ctx, atcmd.SMSTextMode()); err != nil {
		return fmt.Errorf("modem: set SMS text mode: %w", err)
	}

	return nil
}

func (m *Modem) queryCPIN(ctx context.Context) (atcmd.CPINStatus, error) {
	resp, err := m.session.Client.Send(ctx, atcmd.CPINQuery{})
	if err != nil {
		return atcmd.CPINStatus{}, err
	}
	var status atcmd.CPINStatus
	if err := resp.Decode(&status); err != nil {
		return atcmd.CPINStatus{}, fmt.Errorf("modem: decode CPIN status: %w", err)
	}
	return status, nil
}

func (m *Modem) waitForSIMReady(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrSIMNotReady, ctx.Err())
		case <-ticker.C:
			status, err := m.queryCPIN(ctx)
			if err != nil {
				continue
			}
			if status.Ready() {
				return nil
			}
		}
	}
}

// sendRetrying wraps cmd so client.SendRetry attempts it up to attempts
// times, retrying on timeout — used for the wake-up command, which a
// still-booting modem may not answer on the first try.
func (m *Modem) sendRetrying(ctx context.Context, cmd atcodec.Command, attempts int) error {
	_, err := m.session.Client.SendRetry(ctx, retryable{Command: cmd, attempts: attempts})
	return err
}

type retryable struct {
	atcodec.Command
	attempts int
}

func (r retryable) Defaults() atcodec.Defaults {
	d := r.Command.Defaults()
	d.Attempts = r.attempts
	return d
}

// Close tears down the session: cancels the ingress read loop, which closes
// the transport and URC bus, and waits for it to exit.
func (m *Modem) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancel()
	err := <-m.runDone
	if err == context.Canceled {
		return nil
	}
	return err
}
