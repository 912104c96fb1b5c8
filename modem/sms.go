package modem

import (
	"context"
	"fmt"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/atcmd"
)

// SMS represents a text message stored on the modem (as reported by
// AT+CMGL/AT+CMGR, which this package does not yet implement — see
// cmd/atctl for the operator-facing catalog).
type SMS struct {
	Index  int
	Status string // "REC UNREAD", "REC READ", "STO UNSENT", "STO SENT"
	Sender string
	Time   string
	Text   string
}

// SendSMS sends a text message to recipient (international format, e.g.
// "+1234567890") in text mode. It blocks until the modem accepts the
// message for onward delivery; network delivery to the final recipient
// happens asynchronously and is reported via a +CDSI URC if status
// reports were requested.
func (m *Modem) SendSMS(ctx context.Context, recipient, message string) (atcmd.CMGSResult, error) {
	resp, err := m.session.Client.SendWithBody(ctx, atcmd.CMGS{Recipient: recipient}, []byte(message+at.CtrlZ))
	if err != nil {
		return atcmd.CMGSResult{}, fmt.Errorf("modem: send SMS: %w", err)
	}

	var result atcmd.CMGSResult
	if err := resp.Decode(&result); err != nil {
		return atcmd.CMGSResult{}, fmt.Errorf("modem: decode CMGS result: %w", err)
	}
	return result, nil
}
