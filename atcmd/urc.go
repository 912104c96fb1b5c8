package atcmd

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// UrcKind discriminates the Urc sum type.
type UrcKind int

const (
	UrcUnknown UrcKind = iota
	UrcMessageIndication
	UrcSMSStatusReport
	UrcSignalQuality
	UrcRing
	UrcSocketDataAvailable
)

// Urc is the application URC sum type decoded by ingress.DecodeURC,
// covering the subset of unsolicited codes atcmd's commands can provoke:
// incoming-SMS notification (+CMTI), delivery status (+CDSI), signal
// quality change (+CSQ), an incoming call (RING), and socket data
// available (+UUSORD).
type Urc struct {
	Kind UrcKind

	// CMTI / CDSI
	Storage string
	Index   int

	// CSQ
	RSSI int
	BER  int

	// UUSORD
	Socket int
	Length int

	Raw string
}

// DecodeURC turns a raw URC line (as delivered by ingress, tag included)
// into a Urc. An unrecognized line decodes successfully as UrcUnknown
// rather than erroring, since an implementer-defined tag the driver
// doesn't model yet should still surface to the caller (spec.md §4.1's
// custom-matcher escape hatch).
func DecodeURC(raw []byte) (Urc, error) {
	line := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(line, "+CMTI:"):
		storage, idx, err := parseStringInt(line, "+CMTI:")
		if err != nil {
			return Urc{}, err
		}
		return Urc{Kind: UrcMessageIndication, Storage: storage, Index: idx, Raw: line}, nil

	case strings.HasPrefix(line, "+CDSI:"):
		storage, idx, err := parseStringInt(line, "+CDSI:")
		if err != nil {
			return Urc{}, err
		}
		return Urc{Kind: UrcSMSStatusReport, Storage: storage, Index: idx, Raw: line}, nil

	case strings.HasPrefix(line, "+CSQ:"):
		parts := splitArgs(line, "+CSQ:")
		if len(parts) != 2 {
			return Urc{}, errors.Errorf("atcmd: malformed +CSQ URC: %q", line)
		}
		rssi, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Urc{}, errors.Wrap(err, "atcmd: parse +CSQ rssi")
		}
		ber, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Urc{}, errors.Wrap(err, "atcmd: parse +CSQ ber")
		}
		return Urc{Kind: UrcSignalQuality, RSSI: rssi, BER: ber, Raw: line}, nil

	case line == "RING":
		return Urc{Kind: UrcRing, Raw: line}, nil

	case strings.HasPrefix(line, "+UUSORD:"):
		parts := splitArgs(line, "+UUSORD:")
		if len(parts) != 2 {
			return Urc{}, errors.Errorf("atcmd: malformed +UUSORD URC: %q", line)
		}
		socket, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Urc{}, errors.Wrap(err, "atcmd: parse +UUSORD socket")
		}
		length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Urc{}, errors.Wrap(err, "atcmd: parse +UUSORD length")
		}
		return Urc{Kind: UrcSocketDataAvailable, Socket: socket, Length: length, Raw: line}, nil

	default:
		return Urc{Kind: UrcUnknown, Raw: line}, nil
	}
}

func splitArgs(line, prefix string) []string {
	rest := strings.TrimPrefix(line, prefix)
	return strings.Split(rest, ",")
}

func parseStringInt(line, prefix string) (string, int, error) {
	parts := splitArgs(line, prefix)
	if len(parts) != 2 {
		return "", 0, errors.Errorf("atcmd: malformed URC: %q", line)
	}
	storage := strings.Trim(strings.TrimSpace(parts[0]), `"`)
	idx, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, errors.Wrap(err, "atcmd: parse URC index")
	}
	return storage, idx, nil
}
