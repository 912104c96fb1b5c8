package client

import (
	"time"

	"github.com/pkg/errors"

	"i4.energy/across/atmodem/atcodec"
)

// ErrNoTransport describes a missing transport/dialer. Nothing in this
// package returns it; NewConfigBuilder does not take a transport.
var ErrNoTransport = errors.New("client: no dialer configured")

// ResponseDeadlineHook is re-evaluated on every poll while a command is
// outstanding, so a command can extend its own deadline in response to
// partial progress (spec.md §4.4, "dynamically extendable response
// deadline"). elapsed is how long the current command has been waiting;
// a returned duration of zero means "use the static timeout, no extension".
type ResponseDeadlineHook func(cmd atcodec.Command, elapsed time.Duration) time.Duration

// Config bundles the tunables of spec.md §3's Configuration type. The zero
// value is not usable; build one with NewConfigBuilder.
type Config struct {
	// Cooldown is the minimum interval enforced between the completion of
	// one command and the transmission of the next.
	Cooldown time.Duration
	// TxTimeout bounds how long a single write to the transport may take.
	TxTimeout time.Duration
	// FlushTimeout is validated and stored, but the client has no separate
	// flush step, so no operation is bounded by it.
	FlushTimeout time.Duration
	// ResponseTimeout is the default deadline for a command's response,
	// absent any per-command override (atcodec.Defaults.MaxTimeout) or
	// DeadlineHook extension.
	ResponseTimeout time.Duration
	// DeadlineHook, if set, is consulted on every poll while waiting for a
	// response (see ResponseDeadlineHook).
	DeadlineHook ResponseDeadlineHook
	// URCBacklog is the per-subscriber URC bus capacity.
	URCBacklog int
	// IngressBufSize is the fixed ingress buffer capacity.
	IngressBufSize int
}

// ConfigOption mutates a Config under construction, following the
// functional-options idiom the teacher's root config.go uses.
type ConfigOption func(*Config) error

// NewConfigBuilder applies defaults and then opts in order, returning the
// resulting Config or the first error encountered.
func NewConfigBuilder(opts ...ConfigOption) (Config, error) {
	cfg := Config{
		Cooldown:        20 * time.Millisecond,
		TxTimeout:       1 * time.Second,
		FlushTimeout:    50 * time.Millisecond,
		ResponseTimeout: 5 * time.Second,
		URCBacklog:      32,
		IngressBufSize:  2048,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Cooldown < 0 || c.TxTimeout <= 0 || c.FlushTimeout < 0 || c.ResponseTimeout <= 0 {
		return errors.New("client: invalid duration in Config")
	}
	if c.URCBacklog <= 0 || c.IngressBufSize <= 0 {
		return errors.New("client: invalid capacity in Config")
	}
	return nil
}

// WithCooldown overrides the inter-command cooldown.
func WithCooldown(d time.Duration) ConfigOption {
	return func(c *Config) error { c.Cooldown = d; return nil }
}

// WithTxTimeout overrides the write-side timeout.
func WithTxTimeout(d time.Duration) ConfigOption {
	return func(c *Config) error { c.TxTimeout = d; return nil }
}

// WithFlushTimeout overrides Config.FlushTimeout.
func WithFlushTimeout(d time.Duration) ConfigOption {
	return func(c *Config) error { c.FlushTimeout = d; return nil }
}

// WithResponseTimeout overrides the default response deadline.
func WithResponseTimeout(d time.Duration) ConfigOption {
	return func(c *Config) error { c.ResponseTimeout = d; return nil }
}

// WithDeadlineHook installs a dynamically re-evaluated deadline hook.
func WithDeadlineHook(h ResponseDeadlineHook) ConfigOption {
	return func(c *Config) error { c.DeadlineHook = h; return nil }
}

// WithURCBacklog overrides the URC bus's per-subscriber backlog capacity.
func WithURCBacklog(n int) ConfigOption {
	return func(c *Config) error { c.URCBacklog = n; return nil }
}

// WithIngressBufSize overrides the fixed ingress buffer capacity.
func WithIngressBufSize(n int) ConfigOption {
	return func(c *Config) error { c.IngressBufSize = n; return nil }
}
