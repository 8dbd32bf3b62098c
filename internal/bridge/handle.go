package bridge

import (
	"github.com/danmuck/wxsbridge/internal/observability"
)

// Handle is a call-path handle: an owner, a module id and a fixed access
// path. A handle is never invoked locally; it only turns into its wire form
// through Serialize, Call or MarshalJSON.
type Handle struct {
	owner    *Owner
	kind     Kind
	moduleID string
	path     segments
	children handleCache
}

func newHandle(owner *Owner, kind Kind, moduleID string, path segments) *Handle {
	observability.RecordHandleCreated(string(kind), len(path) == 1)
	return &Handle{
		owner:    owner,
		kind:     kind,
		moduleID: moduleID,
		path:     path,
	}
}

// Get returns the child handle for name, building and caching it on first
// access. Repeated calls with the same name return the same *Handle.
func (h *Handle) Get(name string) *Handle {
	child, _ := h.children.lookupOrCreate(name, func() *Handle {
		return newHandle(h.owner, h.kind, h.moduleID, h.path.extend(name))
	})
	return child
}

// Chain walks names from h, one Get per name.
func (h *Handle) Chain(names ...string) *Handle {
	cur := h
	for _, name := range names {
		cur = cur.Get(name)
	}
	return cur
}

// Serialize returns the property-reference wire form of h.
func (h *Handle) Serialize() (string, error) {
	return h.encode(nil, false)
}

// Call returns the call wire form of h with args. Every argument must be
// JSON-representable; a function, channel, non-finite float or cyclic value
// fails with a *SerializationError and no wire string.
func (h *Handle) Call(args ...any) (string, error) {
	if args == nil {
		args = []any{}
	}
	return h.encode(args, true)
}

func (h *Handle) encode(args []any, call bool) (string, error) {
	if h.owner.Destroyed() {
		return "", ErrOwnerDestroyed
	}
	out, err := encode(h.owner.ID(), h.moduleID, h.path, args, call)
	if err != nil {
		observability.RecordSerializationFailure(string(h.kind))
		return "", err
	}
	observability.RecordEncode(string(h.kind), call)
	return out, nil
}

// WireString implements WireEncodable.
func (h *Handle) WireString() (string, error) {
	return h.Serialize()
}

// MarshalJSON emits the reference wire form as a JSON string, so a handle
// nested in any encoded value crosses the boundary as a reference.
func (h *Handle) MarshalJSON() ([]byte, error) {
	s, err := h.Serialize()
	if err != nil {
		return nil, err
	}
	return marshalJSON(s)
}

func (h *Handle) OwnerID() int {
	return h.owner.ID()
}

func (h *Handle) ModuleID() string {
	return h.moduleID
}

func (h *Handle) Kind() Kind {
	return h.kind
}

// Path returns a copy of the access path, root module name first.
func (h *Handle) Path() []string {
	return h.path.clone()
}

func (h *Handle) DottedPath() string {
	return h.path.dotted()
}

// Depth is the number of segments below the module root.
func (h *Handle) Depth() int {
	return len(h.path) - 1
}

func (h *Handle) String() string {
	return h.path.dotted()
}

// release drops every cached descendant.
func (h *Handle) release() {
	for _, child := range h.children.drain() {
		child.release()
	}
}
