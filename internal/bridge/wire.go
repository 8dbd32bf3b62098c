package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Tag prefixes every encoded wire call so a receiving dispatcher can tell it
// apart from an ordinary string value.
const Tag = "wxs://"

// WireCall is the decoded form of a wire string.
type WireCall struct {
	OwnerID  int
	ModuleID string
	Path     string
	// Args is nil for a property reference and non-nil (possibly empty)
	// for a call. Numbers decode as json.Number so large integers keep
	// their exact value.
	Args []any
}

// IsCall reports whether w carries an argument list.
func (w WireCall) IsCall() bool {
	return w.Args != nil
}

// WireEncodable is implemented by values that have a wire form of their own.
// Handles implement it; a host serializer should prefer WireString over any
// other representation.
type WireEncodable interface {
	WireString() (string, error)
}

// EncodeReference encodes a property reference: Tag + [ownerID, moduleID, path].
func EncodeReference(ownerID int, moduleID string, path []string) (string, error) {
	return encode(ownerID, moduleID, segments(path), nil, false)
}

// EncodeCall encodes an invocation: Tag + [ownerID, moduleID, path, args].
// A nil args slice encodes as an empty array.
func EncodeCall(ownerID int, moduleID string, path []string, args []any) (string, error) {
	return encode(ownerID, moduleID, segments(path), args, true)
}

func encode(ownerID int, moduleID string, path segments, args []any, call bool) (string, error) {
	dotted := path.dotted()
	if len(path) == 0 {
		return "", &SerializationError{Path: dotted, Index: -1, Err: errors.New("empty path")}
	}
	if !utf8.ValidString(moduleID) {
		return "", &SerializationError{Path: dotted, Index: -1, Err: fmt.Errorf("module id %q is not valid UTF-8", moduleID)}
	}
	if i := path.firstInvalid(); i >= 0 {
		return "", &SerializationError{Path: dotted, Index: -1, Err: fmt.Errorf("path segment %d is not valid UTF-8", i)}
	}

	parts := []any{ownerID, moduleID, dotted}
	if call {
		encoded := make([]json.RawMessage, len(args))
		for i, arg := range args {
			raw, err := marshalJSON(arg)
			if err != nil {
				return "", &SerializationError{Path: dotted, Index: i, Err: err}
			}
			if hasInvalidUTF8(reflect.ValueOf(arg)) {
				return "", &SerializationError{Path: dotted, Index: i, Err: errors.New("string is not valid UTF-8")}
			}
			encoded[i] = normalizeNegativeZero(raw)
		}
		parts = append(parts, encoded)
	}

	body, err := marshalJSON(parts)
	if err != nil {
		return "", &SerializationError{Path: dotted, Index: -1, Err: err}
	}
	return Tag + string(body), nil
}

// marshalJSON matches JSON.stringify output: no HTML escaping and no
// trailing newline. Negative zero is handled by the caller.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// IsWireCall reports whether s carries the wire tag.
func IsWireCall(s string) bool {
	return strings.HasPrefix(s, Tag)
}

// DecodeWireCall strips the tag from s and parses the envelope. It does not
// resolve or execute anything.
func DecodeWireCall(s string) (WireCall, error) {
	if !IsWireCall(s) {
		return WireCall{}, ErrNotWireCall
	}
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(s[len(Tag):]), &parts); err != nil {
		return WireCall{}, fmt.Errorf("%w: %v", ErrMalformedWireCall, err)
	}
	if len(parts) != 3 && len(parts) != 4 {
		return WireCall{}, fmt.Errorf("%w: expected 3 or 4 elements, got %d", ErrMalformedWireCall, len(parts))
	}

	var out WireCall
	if err := json.Unmarshal(parts[0], &out.OwnerID); err != nil {
		return WireCall{}, fmt.Errorf("%w: owner id: %v", ErrMalformedWireCall, err)
	}
	if err := json.Unmarshal(parts[1], &out.ModuleID); err != nil {
		return WireCall{}, fmt.Errorf("%w: module id: %v", ErrMalformedWireCall, err)
	}
	if err := json.Unmarshal(parts[2], &out.Path); err != nil {
		return WireCall{}, fmt.Errorf("%w: path: %v", ErrMalformedWireCall, err)
	}
	if len(parts) == 4 {
		var args []any
		dec := json.NewDecoder(bytes.NewReader(parts[3]))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return WireCall{}, fmt.Errorf("%w: args: %v", ErrMalformedWireCall, err)
		}
		if args == nil {
			return WireCall{}, fmt.Errorf("%w: args: expected array", ErrMalformedWireCall)
		}
		out.Args = args
	}
	return out, nil
}
