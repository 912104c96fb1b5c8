package atcodec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LengthDelimited carries a byte payload whose wire form is a leading
// decimal length, a comma, and then exactly that many bytes — optionally
// quoted, so that a comma embedded in the payload itself does not confuse
// the field splitter. Grounded on serde_at's LengthDelimited<N>.
type LengthDelimited struct {
	Bytes []byte
}

// String renders "N,<payload>" (unquoted; callers needing the quoted wire
// form for textual payloads should quote at the Command.AtCommand level).
func (l LengthDelimited) String() string {
	return strconv.Itoa(len(l.Bytes)) + "," + string(l.Bytes)
}

// UnmarshalATField lets Decode populate a LengthDelimited struct field
// directly via ParseLengthDelimited, closing the loop between the standalone
// helper and positional decoding of a multi-field response.
func (l *LengthDelimited) UnmarshalATField(raw string) error {
	parsed, err := ParseLengthDelimited(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLengthDelimited parses "N,<N bytes>" or "N,\"<N bytes>\"" out of a
// response field. It is comma-in-payload safe: only the first comma is
// treated as the length/payload separator, and exactly N bytes (after an
// optional matching quote pair) are taken regardless of what they contain.
func ParseLengthDelimited(s string) (LengthDelimited, error) {
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return LengthDelimited{}, errors.Errorf("length-delimited: no ',' in %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:idx]))
	if err != nil {
		return LengthDelimited{}, errors.Wrapf(err, "length-delimited: parse length in %q", s)
	}
	if n < 0 {
		return LengthDelimited{}, errors.Errorf("length-delimited: negative length in %q", s)
	}
	rest := s[idx+1:]
	if len(rest) > 0 && rest[0] == '"' {
		rest = rest[1:]
	}
	if len(rest) < n {
		return LengthDelimited{}, errors.Errorf("length-delimited: want %d bytes, have %d in %q", n, len(rest), s)
	}
	return LengthDelimited{Bytes: []byte(rest[:n])}, nil
}
