package bridge

import (
	"strings"
	"unicode/utf8"
)

// segments is the fixed access path of one handle, root module name first.
// A segments value is never mutated after construction.
type segments []string

func rootSegments(name string) segments {
	return segments{name}
}

// extend returns a new path with name appended; the receiver is untouched.
func (s segments) extend(name string) segments {
	out := make(segments, len(s)+1)
	copy(out, s)
	out[len(s)] = name
	return out
}

func (s segments) dotted() string {
	return strings.Join(s, ".")
}

func (s segments) clone() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// firstInvalid returns the index of the first segment that is not valid
// UTF-8, or -1.
func (s segments) firstInvalid() int {
	for i, seg := range s {
		if !utf8.ValidString(seg) {
			return i
		}
	}
	return -1
}
