// Package activation turns generic content records into typed views.
package activation

import (
	"encoding/json"
	"math"
	"reflect"
	"sync"

	"github.com/goliatone/go-typed-content/content"
	"github.com/vmihailenco/msgpack/v5"
)

// Activator constructs a typed view of rec as described by desc.
type Activator interface {
	Activate(rec content.Record, desc reflect.Type) (content.Typed, error)
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func(rec content.Record, desc reflect.Type) (content.Typed, error)

// Activate calls f(rec, desc).
func (f ActivatorFunc) Activate(rec content.Record, desc reflect.Type) (content.Typed, error) {
	return f(rec, desc)
}

var typedPageType = reflect.TypeOf(content.TypedPage{})

// TypedActivator is the default Activator. It decodes the record's property
// bag into a fresh instance of the descriptor using msgpack field names, so
// typed views declare their properties with `msgpack:"name"` tags. Fields
// tagged `required:"true"` must be present in the property bag.
type TypedActivator struct {
	shapes sync.Map // reflect.Type -> *shape
}

// NewTypedActivator creates a TypedActivator.
func NewTypedActivator() *TypedActivator {
	return &TypedActivator{}
}

type shape struct {
	elem     reflect.Type
	required []requiredField
	err      error
}

type requiredField struct {
	field    string
	property string
}

// Activate implements Activator.
func (a *TypedActivator) Activate(rec content.Record, desc reflect.Type) (content.Typed, error) {
	if rec == nil || rec.PageData() == nil {
		return nil, newActivationError(nil, desc, "", ErrNilRecord)
	}

	s := a.shapeOf(desc)
	if s.err != nil {
		return nil, newActivationError(rec, desc, "", s.err)
	}

	page := rec.PageData().Clone()
	for _, f := range s.required {
		if _, ok := page.Property(f.property); !ok {
			return nil, newActivationError(rec, desc, f.field, ErrMissingProperty)
		}
	}

	instance := reflect.New(s.elem)
	if len(page.Properties) > 0 {
		raw, err := msgpack.Marshal(normalizeNumbers(page.Properties))
		if err != nil {
			return nil, newActivationError(rec, desc, "", err)
		}
		if err := msgpack.Unmarshal(raw, instance.Interface()); err != nil {
			return nil, newActivationError(rec, desc, "", err)
		}
	}

	typed, ok := instance.Interface().(content.Typed)
	if !ok {
		return nil, newActivationError(rec, desc, "", ErrInvalidDescriptor)
	}
	content.TypedPageOf(typed).Attach(page)
	return typed, nil
}

// normalizeNumbers rewrites whole float64 values as int64 so property bags
// decoded from JSON or jsonb columns activate into integer fields. The input
// is not modified.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeNumbers(item)
		}
		return out
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return int64(t)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return normalizeNumbers(f)
		}
		return t.String()
	default:
		return v
	}
}

func (a *TypedActivator) shapeOf(desc reflect.Type) *shape {
	if desc == nil {
		return &shape{err: ErrInvalidDescriptor}
	}
	if cached, ok := a.shapes.Load(desc); ok {
		return cached.(*shape)
	}
	s := inspect(desc)
	actual, _ := a.shapes.LoadOrStore(desc, s)
	return actual.(*shape)
}

func inspect(desc reflect.Type) *shape {
	elem := desc
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return &shape{err: ErrInvalidDescriptor}
	}

	s := &shape{elem: elem}
	embedded := false
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if f.Anonymous && f.Type == typedPageType {
			embedded = true
			continue
		}
		if !f.IsExported() || f.Tag.Get("required") != "true" {
			continue
		}
		s.required = append(s.required, requiredField{field: f.Name, property: propertyName(f)})
	}
	if !embedded {
		return &shape{err: ErrInvalidDescriptor}
	}
	return s
}

func propertyName(f reflect.StructField) string {
	tag := f.Tag.Get("msgpack")
	if tag == "" {
		return f.Name
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			tag = tag[:i]
			break
		}
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
