// Package wire provides the object-id registry conventions the wm
// protocol's client/event stream is built on, patterned after
// neurlang/wayland's wl.Display/wl.Registry: every long-lived thing the
// wm client can reference (a window, an output, a binding) gets a stable
// numeric object id, and the registry is what maps one back to one's
// Go-side object to dispatch an incoming request against.
package wire

import (
	"fmt"
	"sync"
)

// ObjectID is the numeric handle the wm protocol uses to refer to a
// registered object, analogous to a wl_proxy's id.
type ObjectID uint32

// Object is anything the registry can track. Kind distinguishes window
// vs output vs binding objects in log output and protocol dispatch
// tables, the same role wl's interface name plays for a wl_proxy.
type Object interface {
	Kind() string
}

// Registry maps ObjectIDs to live objects, the way wl.Registry maps
// globals to bound proxies. It is the single place new object ids are
// minted, so ids are always unique for the registry's lifetime even
// after an object is removed (ids are never reused, matching the
// protocol's "ids are a monotonic allocation" convention).
type Registry struct {
	mu      sync.Mutex
	next    ObjectID
	objects map[ObjectID]Object
}

// NewRegistry creates an empty registry. IDs start at 1; 0 is reserved
// (the protocol equivalent of a null object reference).
func NewRegistry() *Registry {
	return &Registry{next: 1, objects: make(map[ObjectID]Object)}
}

// Register allocates a new id for obj and returns it.
func (r *Registry) Register(obj Object) ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.objects[id] = obj
	return id
}

// Lookup resolves an id back to its object.
func (r *Registry) Lookup(id ObjectID) (Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	return obj, ok
}

// Unregister removes an id permanently — the wm protocol's "destroy"
// requests land here. The id is never reissued.
func (r *Registry) Unregister(id ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Dispatch resolves id and, on success, invokes handle with the
// resolved object. It exists so transport-layer request handlers (spec
// §4.3's ack_update/commit, a binding enable/disable, an output
// configure request) share one "look up or report a protocol error"
// path instead of repeating the miss-handling everywhere requests are
// decoded.
func (r *Registry) Dispatch(id ObjectID, handle func(Object) error) error {
	obj, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("wire: request for unknown object %d", id)
	}
	return handle(obj)
}
