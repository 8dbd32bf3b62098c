package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrMissingModule     = errors.New("bridge: missing module id")
	ErrSerialization     = errors.New("bridge: value not representable on the wire")
	ErrModuleNotBound    = errors.New("bridge: module not bound")
	ErrOwnerDestroyed    = errors.New("bridge: owner destroyed")
	ErrUnknownKind       = errors.New("bridge: unknown module kind")
	ErrNotWireCall       = errors.New("bridge: missing wire tag")
	ErrMalformedWireCall = errors.New("bridge: malformed wire call")
)

// MissingModuleError reports a declared module name with no known module id.
type MissingModuleError struct {
	OwnerID  int
	Kind     Kind
	Name     string
	ModuleID string
}

func (e MissingModuleError) Error() string {
	if e.ModuleID == "" {
		return fmt.Sprintf("bridge: owner %d: %s module %q has no module id", e.OwnerID, e.Kind, e.Name)
	}
	return fmt.Sprintf("bridge: owner %d: %s module %q: unknown module id %q", e.OwnerID, e.Kind, e.Name, e.ModuleID)
}

func (e MissingModuleError) Is(target error) bool {
	return target == ErrMissingModule
}

// SerializationError reports a path component or argument that cannot be
// encoded. Index is the offending argument position, or -1 when the
// failure is in the handle's own fields.
type SerializationError struct {
	Path  string
	Index int
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("bridge: encode %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("bridge: encode %s: argument %d: %v", e.Path, e.Index, e.Err)
}

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
