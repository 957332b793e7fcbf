package metadata

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// Nested groups the fields of a nested domain object. It has no control of
// its own; Control returns a group of the nested controls.
type Nested struct {
	*Base
	def    *definition.Nested
	object definition.DomainObject
	fields []Field

	groupOnce sync.Once
	group     *control.Group
}

// NewNested maps the nested domain object through opts.MapNested.
func NewNested(def definition.Definition, opts Options) (Field, error) {
	typed, ok := def.(*definition.Nested)
	if !ok {
		return nil, mismatch(definition.TagNested, def)
	}
	base, err := NewBase(def, opts)
	if err != nil {
		return nil, err
	}
	if !definition.IsDomainObject(opts.Value) {
		return nil, fmt.Errorf("metadata: %s %w", base.Key(), ErrNotDomainObject)
	}
	if opts.MapNested == nil {
		return nil, fmt.Errorf("metadata: %s: nested mapper is required", base.Key())
	}

	object := opts.Value.(definition.DomainObject)
	fields, err := opts.MapNested(object, base.Key())
	if err != nil {
		return nil, err
	}
	return &Nested{
		Base:   base,
		def:    typed,
		object: object,
		fields: fields,
	}, nil
}

// NestedFields returns the nested fields in resolved order.
func (n *Nested) NestedFields() []Field {
	return append([]Field(nil), n.fields...)
}

func (n *Nested) Columns() int          { return n.def.Columns() }
func (n *Nested) TransparentFlow() bool { return n.def.TransparentFlow() }

// Object returns the nested domain object.
func (n *Nested) Object() definition.DomainObject {
	return n.object
}

func (n *Nested) Value() any {
	return n.object
}

// Group returns the control group of the nested fields, keyed by property
// name.
func (n *Nested) Group() *control.Group {
	n.groupOnce.Do(func() {
		n.group = control.NewGroup(nil)
		for _, field := range n.fields {
			// Names are keys of a definitions map, so Add cannot collide.
			_ = n.group.Add(field.Name(), field.Control())
		}
	})
	return n.group
}

func (n *Nested) Control() control.AbstractControl {
	return n.Group()
}

// Errors merges the errors of the nested fields under their keys.
func (n *Nested) Errors() validator.Errors {
	var out validator.Errors
	for _, field := range n.fields {
		if errs := field.Errors(); len(errs) > 0 {
			out = out.Merge(validator.Errors{field.Key(): errs})
		}
	}
	return out
}

func (n *Nested) Invalid() bool {
	for _, field := range n.fields {
		if field.Invalid() {
			return true
		}
	}
	return false
}

// Walk calls fn for every field of fields, descending into nested groups
// after visiting the group itself.
func Walk(fields []Field, fn func(Field)) {
	for _, field := range fields {
		fn(field)
		if nested, ok := field.(*Nested); ok {
			Walk(nested.fields, fn)
		}
	}
}

// Close closes the nested fields.
func (n *Nested) Close() {
	for _, field := range n.fields {
		field.Close()
	}
	n.Base.Close()
}
