// Package atcodec implements the derive-time codec described in spec.md
// §4.5: reflection-driven serialization of AT commands and positional
// deserialization of their responses, built from struct tags rather than a
// code-generating macro (Go has no derive).
package atcodec

import "time"

// Defaults describes the per-command knobs the original derive macro
// (`atat_derive`) exposes as attributes; in Go a Command implements Defaults
// directly instead of being annotated.
type Defaults struct {
	// MaxTimeout bounds how long the client waits for this specific command's
	// response, overriding the client-wide default when non-zero.
	MaxTimeout time.Duration
	// Attempts is the total number of sends (1 + retries) for this command.
	Attempts int
	// ExpectsResponseCode is false for commands after which the client does
	// not wait for any reply: the send itself counts as an empty success
	// (spec.md §4.4 "no-body" commands).
	ExpectsResponseCode bool
	// ReattemptOnParseErr opts this command in to retrying after a Parse
	// error, not just after Timeout (spec.md §4.4 retry policy).
	ReattemptOnParseErr bool
}

// DefaultDefaults returns the zero-knob baseline: no per-command timeout
// override, one attempt, response code expected, no parse-error retry.
func DefaultDefaults() Defaults {
	return Defaults{Attempts: 1, ExpectsResponseCode: true}
}

// Command is an outbound AT command. Encode renders the command-line bytes
// (without the trailing CRLF, which the client appends), and the receiver
// also plays the role of the derive macro's per-variant config surface.
type Command interface {
	// AtCommand is the fixed text prefix of the rendered command, e.g.
	// "AT+CFUN". Encode below typically starts from this and appends
	// positional arguments.
	AtCommand() string
	// Defaults returns this command's retry/timeout/response-code knobs.
	Defaults() Defaults
}

// Response is an inbound response payload a Command expects to decode its
// body into. A Command that expects no body response (ExpectsResponseCode
// == false) need not implement this.
type Response interface {
	// FromBytes populates the receiver from a single response body (the
	// bytes between the command echo and the final result code, as handed
	// out by at.Result.Response).
	FromBytes(body []byte) error
}

// URC is an inbound unsolicited response code. Tag returns the wire prefix
// (e.g. "+CREG:") that routes a URC line to this type.
type URC interface {
	Tag() string
	FromBytes(body []byte) error
}
