// Package atcmd is a catalog of atcodec.Command/Response/URC types for a
// typical GSM modem dialog: echo and error-verbosity setup, SIM PIN
// handling, signal quality, socket data read, and SMS send in text mode.
// Each type is grounded on a command the teacher's modem/modem.go and
// modem/sms.go issue by hand, now rendered through atcodec's reflection
// tags instead of fmt.Sprintf/strings.Contains.
package atcmd

import (
	"time"

	"i4.energy/across/atmodem/atcodec"
)

// Plain is an atcodec.Command with no arguments and no structured response
// body, for commands issued purely for their side effect and a bare OK.
type Plain struct {
	Cmd string
}

func (p Plain) AtCommand() string          { return p.Cmd }
func (p Plain) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

// AT is the bare wake-up/sanity-check command.
func AT() Plain { return Plain{Cmd: "AT"} }

// EchoOff disables command echo (ATE0).
func EchoOff() Plain { return Plain{Cmd: "ATE0"} }

// EchoOn enables command echo (ATE1).
func EchoOn() Plain { return Plain{Cmd: "ATE1"} }

// VerboseErrors selects verbose (textual) +CME ERROR reporting (AT+CMEE=2).
func VerboseErrors() Plain { return Plain{Cmd: "AT+CMEE=2"} }

// SMSTextMode selects SMS text mode (AT+CMGF=1).
func SMSTextMode() Plain { return Plain{Cmd: "AT+CMGF=1"} }

// CPINQuery queries SIM PIN status (AT+CPIN?).
type CPINQuery struct{}

func (CPINQuery) AtCommand() string          { return "AT+CPIN?" }
func (CPINQuery) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

// CPINStatus is the decoded response to CPINQuery.
type CPINStatus struct {
	Code string `at:"pos=0"`
}

func (s *CPINStatus) FromBytes(body []byte) error {
	return atcodec.Decode(s, body)
}

// Ready reports whether the SIM no longer requires a PIN.
func (s CPINStatus) Ready() bool { return s.Code == "READY" }

// CPINEnter submits the SIM PIN (AT+CPIN="nnnn").
type CPINEnter struct {
	PIN string `at:"pos=0,quoted"`
}

func (CPINEnter) AtCommand() string          { return "AT+CPIN" }
func (CPINEnter) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

// CFUN sets the module functionality level, optionally with a reset flag
// (AT+CFUN=<fun>[,<rst>]) — the canonical example of atcodec's trailing
// optional-field omission.
type CFUN struct {
	Fun uint8  `at:"pos=0"`
	Rst *uint8 `at:"pos=1,optional"`
}

func (CFUN) AtCommand() string { return "AT+CFUN" }
func (CFUN) Defaults() atcodec.Defaults {
	d := atcodec.DefaultDefaults()
	d.MaxTimeout = 10 * time.Second
	return d
}

// CSQQuery queries signal quality (AT+CSQ).
type CSQQuery struct{}

func (CSQQuery) AtCommand() string          { return "AT+CSQ" }
func (CSQQuery) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

// CSQResult is the decoded response to CSQQuery: +CSQ: <rssi>,<ber>.
type CSQResult struct {
	RSSI int `at:"pos=0"`
	BER  int `at:"pos=1"`
}

func (r *CSQResult) FromBytes(body []byte) error {
	return atcodec.Decode(r, body)
}

// USORDQuery reads up to length bytes from an open socket
// (AT+USORD=<socket>,<length>).
type USORDQuery struct {
	Socket int `at:"pos=0"`
	Length int `at:"pos=1"`
}

func (USORDQuery) AtCommand() string          { return "AT+USORD" }
func (USORDQuery) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

// USORDResult is the decoded response to USORDQuery:
// +USORD: <socket>,<length>,"<data>".
type USORDResult struct {
	Socket int    `at:"pos=0"`
	Length int    `at:"pos=1"`
	Data   string `at:"pos=2,quoted"`
}

func (r *USORDResult) FromBytes(body []byte) error {
	return atcodec.Decode(r, body)
}

// CMGS begins an SMS send (AT+CMGS="<recipient>"), expecting a prompt reply
// rather than an immediate OK — pair with client.Client.SendWithBody.
type CMGS struct {
	Recipient string `at:"pos=0,quoted"`
}

func (CMGS) AtCommand() string { return "AT+CMGS" }
func (CMGS) Defaults() atcodec.Defaults {
	d := atcodec.DefaultDefaults()
	d.MaxTimeout = 30 * time.Second
	return d
}

// CMGSResult is the decoded response after the SMS body and Ctrl-Z have
// been sent: +CMGS: <message-reference>.
type CMGSResult struct {
	Reference int `at:"pos=0"`
}

func (r *CMGSResult) FromBytes(body []byte) error {
	return atcodec.Decode(r, body)
}
