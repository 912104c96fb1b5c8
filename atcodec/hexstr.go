package atcodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HexStr wraps an unsigned integer that serializes/deserializes in
// hexadecimal rather than decimal, e.g. AT+CCID responses of the form
// "+CCID: 0xFeedfACECAfeBE3F". Grounded on serde_at's HexStr<T>.
type HexStr[T ~uint8 | ~uint16 | ~uint32 | ~uint64] struct {
	Val T
	// With0x renders a "0x"/"0X" prefix on encode; decode accepts either form
	// regardless of this flag.
	With0x bool
	// UpperCase renders hex digits in upper case on encode.
	UpperCase bool
}

// String renders the configured hex representation.
func (h HexStr[T]) String() string {
	format := "%x"
	if h.UpperCase {
		format = "%X"
	}
	digits := fmt.Sprintf(format, uint64(h.Val))
	if h.With0x {
		if h.UpperCase {
			return "0X" + digits
		}
		return "0x" + digits
	}
	return digits
}

// UnmarshalATField lets Decode populate a HexStr field directly via
// ParseHexStr, closing the loop between the standalone helper and positional
// decoding of a multi-field response.
func (h *HexStr[T]) UnmarshalATField(raw string) error {
	parsed, err := ParseHexStr[T](raw)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHexStr parses a hex literal with an optional "0x"/"0X" prefix,
// case-insensitively, into a HexStr[T]. Grounded on serde_at's
// HexLiteralVisitor.
func ParseHexStr[T ~uint8 | ~uint16 | ~uint32 | ~uint64](s string) (HexStr[T], error) {
	raw := strings.TrimSpace(s)
	with0x := false
	upper := false
	if strings.HasPrefix(raw, "0x") {
		with0x = true
		raw = raw[2:]
	} else if strings.HasPrefix(raw, "0X") {
		with0x = true
		upper = true
		raw = raw[2:]
	}
	if raw == "" {
		return HexStr[T]{}, errors.Errorf("hex string: empty digits in %q", s)
	}
	for _, r := range raw {
		if r >= 'A' && r <= 'Z' {
			upper = true
			break
		}
	}
	bits := 64
	var zero T
	switch any(zero).(type) {
	case uint8:
		bits = 8
	case uint16:
		bits = 16
	case uint32:
		bits = 32
	}
	n, err := strconv.ParseUint(raw, 16, bits)
	if err != nil {
		return HexStr[T]{}, errors.Wrapf(err, "hex string: parse %q", s)
	}
	return HexStr[T]{Val: T(n), With0x: with0x, UpperCase: upper}, nil
}
