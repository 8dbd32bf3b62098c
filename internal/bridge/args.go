package bridge

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
	"unicode/utf8"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// hasInvalidUTF8 reports whether any string reachable from v through the
// fields encoding/json would emit is not valid UTF-8. Values with their own
// marshaler are trusted. v must already have marshaled without error, so it
// is acyclic.
func hasInvalidUTF8(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	t := v.Type()
	if implementsMarshaler(t) {
		return false
	}
	switch v.Kind() {
	case reflect.String:
		return !utf8.ValidString(v.String())
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return false
		}
		return hasInvalidUTF8(v.Elem())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return false
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if hasInvalidUTF8(v.Index(i)) {
				return true
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.String && !implementsMarshaler(k.Type()) && !utf8.ValidString(k.String()) {
				return true
			}
			if hasInvalidUTF8(iter.Value()) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() && !f.Anonymous {
				continue
			}
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == "-" {
				continue
			}
			if hasInvalidUTF8(v.Field(i)) {
				return true
			}
		}
	}
	return false
}

func implementsMarshaler(t reflect.Type) bool {
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	if t.Kind() != reflect.Pointer {
		pt := reflect.PointerTo(t)
		return pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType)
	}
	return false
}

// normalizeNegativeZero rewrites every -0 number token in compact JSON to 0,
// as JSON.stringify does. String contents are left alone.
func normalizeNegativeZero(raw []byte) []byte {
	var out []byte
	last := 0
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		if c == '-' && i+1 < len(raw) && raw[i+1] == '0' && (i+2 == len(raw) || !continuesNumber(raw[i+2])) {
			out = append(out, raw[last:i]...)
			last = i + 1
		}
	}
	if out == nil {
		return raw
	}
	return append(out, raw[last:]...)
}

func continuesNumber(c byte) bool {
	return c == '.' || c == 'e' || c == 'E' || (c >= '0' && c <= '9')
}
