package modem

import "github.com/pkg/errors"

var (
	// ErrSIMPinRequired is returned by New when the SIM reports it needs a
	// PIN but Config.SimPIN was left empty.
	ErrSIMPinRequired = errors.New("modem: SIM PIN required but not configured")

	// ErrSIMNotReady is returned when the SIM never reaches READY within
	// Config.InitTimeout after a PIN was submitted.
	ErrSIMNotReady = errors.New("modem: SIM did not become ready in time")

	// ErrUnsupportedSIMState is returned when AT+CPIN? reports a status this
	// package does not know how to resolve (PUK required, etc).
	ErrUnsupportedSIMState = errors.New("modem: unsupported SIM state")

	// ErrNotInitialized is returned by Modem methods called after Close.
	ErrNotInitialized = errors.New("modem: not initialized")
)
