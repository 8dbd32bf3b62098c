package bridge

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Owner is the owning instance that module handles are bound to. Its id is
// the ownerId carried by every wire call built from its handles.
type Owner struct {
	id        int
	destroyed atomic.Bool

	mu    sync.Mutex
	roots handleCache
	bound []string
}

// NewOwner creates an owner with the given instance uid.
func NewOwner(uid int) *Owner {
	return &Owner{id: uid}
}

func (o *Owner) ID() int {
	return o.id
}

func (o *Owner) Destroyed() bool {
	return o.destroyed.Load()
}

// Module returns the root handle bound under name.
func (o *Owner) Module(name string) (*Handle, error) {
	if o.Destroyed() {
		return nil, ErrOwnerDestroyed
	}
	h, ok := o.roots.lookup(name)
	if !ok {
		return nil, ErrModuleNotBound
	}
	return h, nil
}

// Resolve walks a dotted path such as "wxsA.foo.bar" from its module root.
func (o *Owner) Resolve(dotted string) (*Handle, error) {
	names := strings.Split(dotted, ".")
	root, err := o.Module(names[0])
	if err != nil {
		return nil, err
	}
	return root.Chain(names[1:]...), nil
}

// BoundModules lists bound module names in registration order.
func (o *Owner) BoundModules() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.bound))
	copy(out, o.bound)
	return out
}

// ReferencesModule reports whether source contains a ".<module>." access for
// any bound module. The view runtime uses this to decide whether an event
// handler body calls across the boundary.
func (o *Owner) ReferencesModule(source string) bool {
	for _, name := range o.BoundModules() {
		if strings.Contains(source, "."+name+".") {
			return true
		}
	}
	return false
}

// Destroy discards every handle bound to o. Handles still referenced by
// callers stop encoding and return ErrOwnerDestroyed.
func (o *Owner) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.destroyed.CompareAndSwap(false, true) {
		return
	}
	o.bound = nil
	for _, root := range o.roots.drain() {
		root.release()
	}
}

// bind returns the root for name, creating it on first registration. The
// destroyed check and the insert run under o.mu so a concurrent Destroy
// cannot be followed by a late bind.
func (o *Owner) bind(kind Kind, name, moduleID string) (*Handle, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed.Load() {
		return nil, false, ErrOwnerDestroyed
	}
	root, created := o.roots.lookupOrCreate(name, func() *Handle {
		return newHandle(o, kind, moduleID, rootSegments(name))
	})
	if created {
		o.bound = append(o.bound, name)
	}
	return root, created, nil
}
