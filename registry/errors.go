package registry

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNilDescriptor is returned when registering a nil type.
var ErrNilDescriptor = errors.New("registry: descriptor is nil")

// ConflictKind tells which side of a binding is already taken.
type ConflictKind string

const (
	// ConflictIDTaken means the id is bound to another descriptor.
	ConflictIDTaken ConflictKind = "ID_TAKEN"

	// ConflictDescriptorTaken means the descriptor is bound to another id.
	ConflictDescriptorTaken ConflictKind = "DESCRIPTOR_TAKEN"
)

// ConflictError reports a registration inconsistent with an existing binding.
type ConflictError struct {
	Kind       ConflictKind
	ID         int
	Descriptor reflect.Type
	Existing   Binding
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictIDTaken:
		return fmt.Sprintf("registry: type id %d already bound to %s, cannot bind %s",
			e.ID, e.Existing.Descriptor, e.Descriptor)
	default:
		return fmt.Sprintf("registry: %s already bound to type id %d, cannot bind id %d",
			e.Descriptor, e.Existing.ID, e.ID)
	}
}
