package atcodec

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Decode populates resp's positional fields (tagged `at:"pos=N"`) from a
// single response body line, e.g. `+USORD: 3,16,"16 bytes of data"`.
// resp must be a non-nil pointer to a struct. Grounded on serde_at's
// positional deserializer (`de/mod.rs`).
func Decode(resp any, body []byte) error {
	rv := reflect.ValueOf(resp)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("decode: resp must be a non-nil pointer")
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return errors.New("decode: resp must point to a struct")
	}

	fields, err := collectFields(elem)
	if err != nil {
		return err
	}

	tokens := splitFields(stripTagPrefix(body))

	for _, f := range fields {
		idx := f.tag.pos
		if idx >= len(tokens) {
			if f.tag.optional {
				continue
			}
			return errors.Errorf("decode: missing field at pos=%d (have %d tokens)", idx, len(tokens))
		}
		raw := tokens[idx]
		if f.value.Kind() == reflect.Struct && f.value.Type() == lengthDelimitedType {
			// LengthDelimited's own leading length occupies one comma-split
			// token and its payload the rest; rejoin so ParseLengthDelimited
			// sees the whole "N,<payload>" run it expects.
			raw = strings.Join(tokens[idx:], ",")
		}
		if err := decodeInto(f.value, raw, f.tag); err != nil {
			return errors.Wrapf(err, "decode field at pos=%d", idx)
		}
	}
	return nil
}

var lengthDelimitedType = reflect.TypeOf(LengthDelimited{})

// stripTagPrefix removes a leading "+TAG:" (or "+TAG: ") header so the
// remainder is just the comma-separated argument list.
func stripTagPrefix(body []byte) []byte {
	s := string(body)
	if len(s) == 0 || s[0] != '+' {
		return body
	}
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return body
	}
	return []byte(strings.TrimLeft(s[colon+1:], " "))
}

// splitFields splits s on commas, respecting double-quoted regions so a
// comma embedded in a quoted string is not treated as a separator.
func splitFields(s []byte) []string {
	var out []string
	start := 0
	inQuote := false
	str := string(s)
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, str[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, str[start:])
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// fieldDecoder lets a struct type (LengthDelimited, HexStr[T]) take over its
// own positional decoding, mirroring the custom Stringer hook encodeValue
// already consults on the encode side.
type fieldDecoder interface {
	UnmarshalATField(raw string) error
}

func decodeInto(v reflect.Value, raw string, ft fieldTag) error {
	raw = strings.TrimSpace(raw)

	if v.Kind() == reflect.Ptr {
		if raw == "" {
			return nil // leave nil: absent optional field
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeInto(v.Elem(), raw, ft)
	}

	if v.CanAddr() {
		if fd, ok := v.Addr().Interface().(fieldDecoder); ok {
			return fd.UnmarshalATField(raw)
		}
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(unquote(raw))
		return nil
	case reflect.Bool:
		switch raw {
		case "true":
			v.SetBool(true)
		case "false":
			v.SetBool(false)
		default:
			return errors.Errorf("decode: invalid bool literal %q", raw)
		}
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(err, "parse float %q", raw)
		}
		v.SetFloat(f)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(stripHexPrefix(raw), intBase(raw, ft), 64)
		if err != nil {
			return errors.Wrapf(err, "parse int %q", raw)
		}
		v.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(stripHexPrefix(raw), intBase(raw, ft), 64)
		if err != nil {
			return errors.Wrapf(err, "parse uint %q", raw)
		}
		v.SetUint(n)
		return nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(unquote(raw)))
			return nil
		}
		return errors.Errorf("decode: unsupported slice element type %s", v.Type().Elem())
	default:
		return errors.Errorf("decode: unsupported field kind %s", v.Kind())
	}
}

func intBase(raw string, ft fieldTag) int {
	if ft.hex || strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return 16
	}
	return 10
}

func stripHexPrefix(raw string) string {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return raw[2:]
	}
	return raw
}
