// Package domain adapts values to the property access the mapper needs.
// Values implementing Accessor are used as-is; anything else is read and
// written through struct reflection keyed by the dorf or json tag.
package domain

import (
	"fmt"

	"github.com/goliatone/go-dorf/internal/reflectx"
)

// Accessor gives the mapper explicit property access, for domain objects
// whose shape does not match their definitions map (backend payloads, maps,
// generated types).
type Accessor interface {
	FieldValue(name string) (any, bool)
	SetFieldValue(name string, value any) error
}

// Value reads the property name of obj.
func Value(obj any, name string) (any, bool) {
	if accessor, ok := obj.(Accessor); ok {
		return accessor.FieldValue(name)
	}
	return reflectx.Get(obj, name)
}

// SetValue writes the property name of obj.
func SetValue(obj any, name string, value any) error {
	if accessor, ok := obj.(Accessor); ok {
		if err := accessor.SetFieldValue(name, value); err != nil {
			return fmt.Errorf("domain: set %q: %w", name, err)
		}
		return nil
	}
	if err := reflectx.Set(obj, name, value); err != nil {
		return fmt.Errorf("domain: set %q: %w", name, err)
	}
	return nil
}

// Setter returns a closure that writes name on obj.
func Setter(obj any, name string) func(any) error {
	return func(value any) error {
		return SetValue(obj, name, value)
	}
}

// Properties lists the property names reflection can see on obj.
func Properties(obj any) []string {
	if object, ok := obj.(*Object); ok {
		return object.Properties()
	}
	return reflectx.Fields(obj)
}
