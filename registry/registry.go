package registry

import (
	"reflect"
	"sort"

	"github.com/goliatone/go-typed-content/internal/naming"
	"github.com/puzpuzpuz/xsync/v3"
)

// Binding associates a numeric type id with a descriptor.
type Binding struct {
	ID         int
	Descriptor reflect.Type
	Name       string
}

// Registry is a concurrency safe bijection between type ids and descriptors.
type Registry struct {
	mu     *xsync.RBMutex
	byID   map[int]reflect.Type
	byType map[reflect.Type]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		mu:     xsync.NewRBMutex(),
		byID:   make(map[int]reflect.Type),
		byType: make(map[reflect.Type]int),
	}
}

// Register binds id to desc. Registering an identical pair again is a no-op.
func (r *Registry) Register(id int, desc reflect.Type) error {
	if desc == nil {
		return ErrNilDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, idBound := r.byID[id]
	existingID, typeBound := r.byType[desc]

	if idBound && existing == desc {
		return nil
	}
	if idBound {
		return &ConflictError{
			Kind:       ConflictIDTaken,
			ID:         id,
			Descriptor: desc,
			Existing:   newBinding(id, existing),
		}
	}
	if typeBound {
		return &ConflictError{
			Kind:       ConflictDescriptorTaken,
			ID:         id,
			Descriptor: desc,
			Existing:   newBinding(existingID, desc),
		}
	}

	r.byID[id] = desc
	r.byType[desc] = id
	return nil
}

// RegisterType binds id to the descriptor of T. T is usually a pointer to a
// struct embedding content.TypedPage.
func RegisterType[T any](r *Registry, id int) error {
	return r.Register(id, reflect.TypeOf((*T)(nil)).Elem())
}

// Unregister removes the binding for id. It reports whether one existed.
func (r *Registry) Unregister(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byType, desc)
	return true
}

// ResolveDescriptor returns the descriptor bound to id.
func (r *Registry) ResolveDescriptor(id int) (reflect.Type, bool) {
	t := r.mu.RLock()
	defer r.mu.RUnlock(t)

	desc, ok := r.byID[id]
	return desc, ok
}

// ResolveID returns the id bound to desc.
func (r *Registry) ResolveID(desc reflect.Type) (int, bool) {
	if desc == nil {
		return 0, false
	}

	t := r.mu.RLock()
	defer r.mu.RUnlock(t)

	id, ok := r.byType[desc]
	return id, ok
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	t := r.mu.RLock()
	defer r.mu.RUnlock(t)
	return len(r.byID)
}

// Bindings returns a snapshot of all bindings ordered by id.
func (r *Registry) Bindings() []Binding {
	t := r.mu.RLock()
	out := make([]Binding, 0, len(r.byID))
	for id, desc := range r.byID {
		out = append(out, newBinding(id, desc))
	}
	r.mu.RUnlock(t)

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func newBinding(id int, desc reflect.Type) Binding {
	return Binding{ID: id, Descriptor: desc, Name: naming.TypeName(desc)}
}
