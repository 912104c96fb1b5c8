package atcodec

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// field tag keys recognized by Encode/Decode. The grammar is a
// comma-separated list of bare flags and key=value pairs, e.g.
// `at:"pos=1,quoted"`.
const (
	tagKey      = "at"
	tagPos      = "pos"
	tagQuoted   = "quoted"
	tagHex      = "hex"
	tagOptional = "optional"
	tagSkip     = "-"
)

type fieldTag struct {
	pos      int
	hasPos   bool
	quoted   bool
	hex      bool
	optional bool
	skip     bool
}

func parseFieldTag(raw string) fieldTag {
	var ft fieldTag
	if raw == "" {
		return ft
	}
	if raw == tagSkip {
		ft.skip = true
		return ft
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == tagQuoted:
			ft.quoted = true
		case part == tagHex:
			ft.hex = true
		case part == tagOptional:
			ft.optional = true
		case strings.HasPrefix(part, tagPos+"="):
			n, err := strconv.Atoi(strings.TrimPrefix(part, tagPos+"="))
			if err == nil {
				ft.pos = n
				ft.hasPos = true
			}
		}
	}
	return ft
}

type positionalField struct {
	tag   fieldTag
	value reflect.Value
}

// Encode renders cmd's fixed AtCommand() prefix followed by its positional
// argument fields (struct fields tagged `at:"pos=N"`, in ascending N order),
// joined with commas and wrapped in "=" syntax when any are present.
// Trailing fields whose Option-like value is the zero value and tagged
// `optional` are omitted, per spec.md §4.5's "Option, trailing omission"
// rule — but only while every field after them is also omitted, so a
// present field never shifts a later field's position.
func Encode(cmd Command) (string, error) {
	prefix := cmd.AtCommand()
	rv := reflect.ValueOf(cmd)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return prefix, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return prefix, nil
	}

	fields, err := collectFields(rv)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return prefix, nil
	}

	args := make([]string, len(fields))
	for i, f := range fields {
		s, err := encodeValue(f.value, f.tag)
		if err != nil {
			return "", errors.Wrapf(err, "encode field at pos=%d", f.tag.pos)
		}
		args[i] = s
	}

	// Trim trailing omitted optionals: an optional field whose encoded form
	// is empty may be dropped from the tail, but only contiguously from the
	// end so positional indices stay meaningful for what remains.
	end := len(args)
	for end > 0 && fields[end-1].tag.optional && args[end-1] == "" {
		end--
	}
	args = args[:end]
	if len(args) == 0 {
		return prefix, nil
	}

	return prefix + "=" + strings.Join(args, ","), nil
}

func collectFields(rv reflect.Value) ([]positionalField, error) {
	rt := rv.Type()
	var fields []positionalField
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		ft := parseFieldTag(sf.Tag.Get(tagKey))
		if ft.skip || !ft.hasPos {
			continue
		}
		fields = append(fields, positionalField{tag: ft, value: rv.Field(i)})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].tag.pos < fields[j].tag.pos })
	return fields, nil
}

func encodeValue(v reflect.Value, ft fieldTag) (string, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", nil
		}
		return encodeValue(v.Elem(), ft)
	}

	if stringer, ok := v.Interface().(fmt.Stringer); ok {
		return maybeQuote(stringer.String(), ft), nil
	}

	switch v.Kind() {
	case reflect.String:
		return maybeQuote(v.String(), ft), nil
	case reflect.Bool:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if ft.hex {
			return fmt.Sprintf("0x%X", n), nil
		}
		return strconv.FormatInt(n, 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := v.Uint()
		if ft.hex {
			return fmt.Sprintf("0x%X", n), nil
		}
		return strconv.FormatUint(n, 10), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return maybeQuote(string(v.Bytes()), ft), nil
		}
		return "", errors.Errorf("encode: unsupported slice element type %s", v.Type().Elem())
	default:
		return "", errors.Errorf("encode: unsupported field kind %s", v.Kind())
	}
}

func maybeQuote(s string, ft fieldTag) string {
	if ft.quoted {
		return `"` + s + `"`
	}
	return s
}
