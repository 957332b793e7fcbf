// Package definition holds the declarative description of form fields. A
// definition is built once by the owner of a domain object and is treated as
// immutable afterwards; the only mutable attribute is the order hint.
package definition

import (
	"reflect"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// Tag identifies the kind of a field. It selects the metadata factory used by
// the mapper and the template used by renderers.
type Tag string

const (
	TagInput    Tag = "input"
	TagSelect   Tag = "select"
	TagRadio    Tag = "radio"
	TagCheckbox Tag = "checkbox"
	TagNested   Tag = "nested-object"
)

func (t Tag) String() string {
	return string(t)
}

// Definition is implemented by every field kind. Custom kinds usually embed
// Base and add a Tag method.
type Definition interface {
	Tag() Tag
	Common() *Base
}

// Options configures the attributes shared by every kind. All fields are
// optional.
type Options struct {
	Label               string
	Validators          []validator.Func
	AsyncValidators     []validator.AsyncFunc
	ErrorMessage        string
	OnSummary           bool
	CSS                 css.Classes
	Extras              map[string]any
	Debounce            time.Duration
	UpdateModelOnChange bool
	// Order is the explicit position hint. Nil leaves ordering to the mapper.
	Order *int
}

// Ordered returns a pointer to n for Options.Order.
func Ordered(n int) *int {
	return &n
}

// Base carries the attributes shared by every kind.
type Base struct {
	label               string
	validators          []validator.Func
	asyncValidators     []validator.AsyncFunc
	errorMessage        string
	onSummary           bool
	css                 css.Classes
	extras              map[string]any
	debounce            time.Duration
	updateModelOnChange bool
	order               int
	hasOrder            bool
}

// NewBase applies defaults to opts. Validators default to
// validator.AlwaysValid.
func NewBase(opts Options) Base {
	validators := lo.Filter(opts.Validators, func(fn validator.Func, _ int) bool {
		return fn != nil
	})
	if len(validators) == 0 {
		validators = []validator.Func{validator.AlwaysValid}
	}
	asyncValidators := lo.Filter(opts.AsyncValidators, func(fn validator.AsyncFunc, _ int) bool {
		return fn != nil
	})

	base := Base{
		label:               opts.Label,
		validators:          validators,
		asyncValidators:     asyncValidators,
		errorMessage:        opts.ErrorMessage,
		onSummary:           opts.OnSummary,
		css:                 opts.CSS,
		extras:              cloneExtras(opts.Extras),
		debounce:            opts.Debounce,
		updateModelOnChange: opts.UpdateModelOnChange,
	}
	if base.debounce < 0 {
		base.debounce = 0
	}
	if opts.Order != nil {
		base.order = *opts.Order
		base.hasOrder = true
	}
	return base
}

// Common returns b. Embedding kinds inherit it to satisfy Definition.
func (b *Base) Common() *Base {
	return b
}

func (b *Base) Label() string {
	return b.label
}

// Validators returns a copy of the synchronous validators.
func (b *Base) Validators() []validator.Func {
	return append([]validator.Func(nil), b.validators...)
}

// Validator returns the synchronous validators composed into one.
func (b *Base) Validator() validator.Func {
	return validator.Compose(b.validators...)
}

func (b *Base) AsyncValidators() []validator.AsyncFunc {
	return append([]validator.AsyncFunc(nil), b.asyncValidators...)
}

func (b *Base) ErrorMessage() string {
	return b.errorMessage
}

// OnSummary reports whether the field is listed in summary views.
func (b *Base) OnSummary() bool {
	return b.onSummary
}

func (b *Base) CSS() css.Classes {
	return b.css
}

// Extras returns a copy of the extra properties.
func (b *Base) Extras() map[string]any {
	return cloneExtras(b.extras)
}

// Extra returns a single extra property.
func (b *Base) Extra(key string) (any, bool) {
	value, ok := b.extras[key]
	return value, ok
}

// ExtraKeys lists extra property names in sorted order.
func (b *Base) ExtraKeys() []string {
	keys := lo.Keys(b.extras)
	sort.Strings(keys)
	return keys
}

func (b *Base) Debounce() time.Duration {
	return b.debounce
}

func (b *Base) UpdateModelOnChange() bool {
	return b.updateModelOnChange
}

// Order returns the order hint and whether one was set.
func (b *Base) Order() (int, bool) {
	return b.order, b.hasOrder
}

// SetOrder sets the order hint. It is not safe to call while the definition
// is being mapped.
func (b *Base) SetOrder(order int) {
	b.order = order
	b.hasOrder = true
}

// Extra returns the extra property key of def converted to T.
func Extra[T any](def Definition, key string) (T, bool) {
	var zero T
	if def == nil {
		return zero, false
	}
	raw, ok := def.Common().Extra(key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	return value, ok
}

// Map binds property names to definitions. Iteration order carries no
// meaning; use explicit orders for stable layouts.
type Map map[string]Definition

// Keys returns the property names in sorted order.
func (m Map) Keys() []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// DomainObject is implemented by values that can drive a form.
type DomainObject interface {
	FieldDefinitions() Map
}

// IsDomainObject reports whether value is a non-nil DomainObject.
func IsDomainObject(value any) bool {
	obj, ok := value.(DomainObject)
	if !ok || obj == nil {
		return false
	}
	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func cloneExtras(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
