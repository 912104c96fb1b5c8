package atcodec

import (
	"strconv"

	"github.com/pkg/errors"
)

// IntRepr is the set of integer kinds usable as an explicit enum
// representation, mirroring `#[at_enum(u8)]` et al. in the derive macro this
// package replaces.
type IntRepr interface {
	~uint8 | ~uint16 | ~uint32
}

// EncodeIntEnum renders an int-repr enum value as its wire decimal form.
func EncodeIntEnum[T IntRepr](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseIntEnum parses the wire decimal form of an int-repr enum value.
func ParseIntEnum[T IntRepr](s string) (T, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "int enum: parse %q", s)
	}
	return T(n), nil
}

// TaggedVariant is one arm of a tagged-union response or URC, identified by
// a fixed wire prefix (e.g. "+UMWI:"), grounded on atat_derive's
// `#[at_urc(b"...")]` attribute.
type TaggedVariant struct {
	Tag    string
	Decode func(body []byte) error
}

// DecodeTagged matches body against each variant's Tag (prefix match) in
// order and invokes the first match's Decode on the remainder. It reports
// whether any variant matched.
func DecodeTagged(body []byte, variants []TaggedVariant) (matched bool, err error) {
	for _, v := range variants {
		if len(body) < len(v.Tag) || string(body[:len(v.Tag)]) != v.Tag {
			continue
		}
		return true, v.Decode(body[len(v.Tag):])
	}
	return false, nil
}
