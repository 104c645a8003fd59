package activation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-typed-content/content"
)

var (
	// ErrNilRecord is returned when there is nothing to activate.
	ErrNilRecord = errors.New("activation: record is nil")

	// ErrInvalidDescriptor is returned when the descriptor is not a struct (or
	// pointer to struct) embedding content.TypedPage.
	ErrInvalidDescriptor = errors.New("activation: descriptor does not describe a typed page")

	// ErrMissingProperty is returned when a required property is absent.
	ErrMissingProperty = errors.New("activation: required property missing")

	// ErrNilInstance is returned when an activator produced no instance.
	ErrNilInstance = errors.New("activation: activator returned no instance")
)

// ActivationError reports that a record could not be turned into the typed
// view described by Descriptor. It is local to one request.
type ActivationError struct {
	TypeID     int
	Reference  content.Reference
	Descriptor reflect.Type
	Field      string
	Err        error
}

// Error implements the error interface.
func (e *ActivationError) Error() string {
	msg := fmt.Sprintf("activate %s (type %d) as %v", e.Reference, e.TypeID, e.Descriptor)
	if e.Field != "" {
		msg += " field " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ActivationError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *ActivationError for rec and desc. Errors that
// already are activation errors are returned unchanged.
func Wrap(rec content.Record, desc reflect.Type, err error) error {
	if err == nil {
		return nil
	}
	var ae *ActivationError
	if errors.As(err, &ae) {
		return err
	}
	return newActivationError(rec, desc, "", err)
}

func newActivationError(rec content.Record, desc reflect.Type, field string, err error) *ActivationError {
	ae := &ActivationError{Descriptor: desc, Field: field, Err: err}
	if rec != nil {
		ae.TypeID = rec.TypeID()
		ae.Reference = rec.Reference()
	}
	return ae
}
