// Package reflectx reads and writes domain object properties by name using
// cached per-type field plans.
package reflectx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag consulted before the json tag.
const TagName = "dorf"

var (
	ErrNotStruct      = errors.New("reflectx: value is not a struct")
	ErrUnknownField   = errors.New("reflectx: unknown field")
	ErrNotAssignable  = errors.New("reflectx: value not assignable")
	ErrNotAddressable = errors.New("reflectx: value is not addressable")
)

type fieldPlan struct {
	name  string
	index []int
	typ   reflect.Type
}

type plan struct {
	byName  map[string]*fieldPlan
	byFold  map[string]*fieldPlan
	ordered []*fieldPlan
}

var plans sync.Map // reflect.Type -> *plan

func planFor(t reflect.Type) *plan {
	if cached, ok := plans.Load(t); ok {
		return cached.(*plan)
	}
	built := buildPlan(t)
	actual, _ := plans.LoadOrStore(t, built)
	return actual.(*plan)
}

func buildPlan(t reflect.Type) *plan {
	p := &plan{
		byName: make(map[string]*fieldPlan),
		byFold: make(map[string]*fieldPlan),
	}
	for _, sf := range reflect.VisibleFields(t) {
		if sf.PkgPath != "" || sf.Anonymous {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		if _, exists := p.byName[name]; exists {
			continue
		}
		fp := &fieldPlan{name: name, index: sf.Index, typ: sf.Type}
		p.byName[name] = fp
		p.ordered = append(p.ordered, fp)
		fold := strings.ToLower(name)
		if _, exists := p.byFold[fold]; !exists {
			p.byFold[fold] = fp
		}
		if goFold := strings.ToLower(sf.Name); goFold != fold {
			if _, exists := p.byFold[goFold]; !exists {
				p.byFold[goFold] = fp
			}
		}
	}
	return p
}

func fieldName(sf reflect.StructField) (string, bool) {
	for _, key := range []string{TagName, "json"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return sf.Name, false
}

func (p *plan) lookup(name string) (*fieldPlan, bool) {
	if fp, ok := p.byName[name]; ok {
		return fp, true
	}
	fp, ok := p.byFold[strings.ToLower(name)]
	return fp, ok
}

// Fields lists the property names of a struct (or pointer to struct) in
// declaration order.
func Fields(obj any) []string {
	rv := indirect(reflect.ValueOf(obj))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil
	}
	p := planFor(rv.Type())
	out := make([]string, 0, len(p.ordered))
	for _, fp := range p.ordered {
		out = append(out, fp.name)
	}
	return out
}

// Get returns the property name of obj. Maps with string keys are read
// directly.
func Get(obj any, name string) (any, bool) {
	rv := indirect(reflect.ValueOf(obj))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	case reflect.Struct:
		fp, ok := planFor(rv.Type()).lookup(name)
		if !ok {
			return nil, false
		}
		field, err := rv.FieldByIndexErr(fp.index)
		if err != nil {
			return nil, false
		}
		return field.Interface(), true
	}
	return nil, false
}

// Set assigns value to the property name of obj. obj must be a pointer to a
// struct or a map with string keys. Nil resets the field to its zero value;
// convertible values are converted.
func Set(obj any, name string, value any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Map {
		return setMap(rv, name, value)
	}
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrNotAddressable, obj)
	}
	target := indirect(rv)
	if target.Kind() == reflect.Map {
		return setMap(target, name, value)
	}
	if target.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", ErrNotStruct, obj)
	}
	fp, ok := planFor(target.Type()).lookup(name)
	if !ok {
		return fmt.Errorf("%w %q on %T", ErrUnknownField, name, obj)
	}
	field, err := target.FieldByIndexErr(fp.index)
	if err != nil {
		return fmt.Errorf("reflectx: field %q: %w", name, err)
	}
	converted, err := assignable(value, fp.typ)
	if err != nil {
		return fmt.Errorf("reflectx: field %q: %w", name, err)
	}
	field.Set(converted)
	return nil
}

func setMap(rv reflect.Value, name string, value any) error {
	if rv.IsNil() {
		return fmt.Errorf("%w: nil map", ErrNotAddressable)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key %s", ErrNotStruct, rv.Type().Key())
	}
	converted, err := assignable(value, rv.Type().Elem())
	if err != nil {
		return fmt.Errorf("reflectx: key %q: %w", name, err)
	}
	rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), converted)
	return nil
}

func assignable(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(typ):
		return rv, nil
	case rv.Type().ConvertibleTo(typ) && sameFamily(rv.Kind(), typ.Kind()):
		return rv.Convert(typ), nil
	case typ.Kind() == reflect.Pointer && rv.Type().AssignableTo(typ.Elem()):
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(rv)
		return ptr, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAssignable, rv.Type(), typ)
}

// sameFamily rejects conversions such as int to string that reflect allows
// but that change meaning.
func sameFamily(a, b reflect.Kind) bool {
	return family(a) == family(b)
}

func family(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	}
	return int(k) + 10
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
