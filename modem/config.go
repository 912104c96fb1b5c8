package modem

import (
	"time"

	"github.com/pkg/errors"

	"i4.energy/across/atmodem/transport"
)

// ErrNoDialer is returned by New when Config.Dialer is nil.
var ErrNoDialer = errors.New("modem: no dialer configured")

// Config bundles the knobs for New's init sequence and the underlying
// client.Config it derives. Grounded on the teacher's modem/config.go,
// generalized to drive client.Config instead of a hand-rolled exec loop.
type Config struct {
	Dialer transport.Dialer

	// SimPIN is submitted via AT+CPIN="..." if the SIM reports it needs one.
	SimPIN string

	// MinSendInterval is the minimum spacing enforced between commands
	// (client.Config.Cooldown).
	MinSendInterval time.Duration

	// MaxRetries is how many additional attempts the wake-up command (AT)
	// gets beyond the first, to ride out a modem still booting.
	MaxRetries int

	// EchoOn selects ATE1 (kept) over ATE0 (disabled, the default) during
	// init. The digester does not require either mode, unlike the teacher's
	// Splitter/Classify, but the AT command itself is still issued so the
	// peer's echo behaviour matches what the operator configured.
	EchoOn bool

	// ATTimeout is the default per-command response deadline
	// (client.Config.ResponseTimeout).
	ATTimeout time.Duration

	// InitTimeout bounds the whole init sequence, independent of ATTimeout.
	InitTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.MinSendInterval == 0 {
		c.MinSendInterval = 20 * time.Millisecond
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.ATTimeout == 0 {
		c.ATTimeout = 5 * time.Second
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 30 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}
