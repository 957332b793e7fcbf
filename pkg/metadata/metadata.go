// Package metadata binds field definitions to runtime state: the current
// value, the setter into the domain object and a lazily built control.
package metadata

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/validator"
)

var (
	// ErrKeyRequired is returned when Options.Key is blank.
	ErrKeyRequired = errors.New("metadata: key is required")
	// ErrNotDomainObject is returned when a nested value does not implement
	// definition.DomainObject.
	ErrNotDomainObject = errors.New("has to be defined as a recognized domain object")
	// ErrDefinitionMismatch is returned when a factory receives a definition
	// of the wrong kind.
	ErrDefinitionMismatch = errors.New("metadata: definition kind mismatch")
)

// NestedMapper maps the fields of a nested domain object. parent is the key
// of the nested field and prefixes the nested keys.
type NestedMapper func(obj definition.DomainObject, parent string) ([]Field, error)

// Options carries the runtime inputs of a field.
type Options struct {
	// Key identifies the field within a mapping. Nested keys are dotted
	// paths such as "address.street".
	Key string
	// Name is the property name. Defaults to the last segment of Key.
	Name  string
	Value any
	// SetDomainObjValue writes a changed value back into the domain object.
	// It is only wired when the definition enables UpdateModelOnChange.
	SetDomainObjValue func(value any) error
	// MapNested is required by nested fields.
	MapNested NestedMapper
}

// Factory builds the metadata for a definition.
type Factory func(def definition.Definition, opts Options) (Field, error)

// Field is the runtime view of a definition.
type Field interface {
	Key() string
	Name() string
	Tag() definition.Tag
	Definition() definition.Definition
	Label() string
	ErrorMessage() string
	CSS() css.Classes
	Extra(key string) (any, bool)
	Value() any
	Order() (int, bool)
	SetOrder(order int)
	Control() control.AbstractControl
	Errors() validator.Errors
	Invalid() bool
	Required() bool
	Close()
}

// Base implements Field for any definition. Kinds embed it; custom kinds can
// use it directly through NewCustom.
type Base struct {
	def    definition.Definition
	common *definition.Base
	key    string
	name   string
	value  any
	setter func(any) error

	mu          sync.Mutex
	order       int
	hasOrder    bool
	ctrl        *control.Control
	unsubscribe func()
	timer       *time.Timer
	pending     any
	invalid     bool
	writeErr    error
	closed      bool
}

// NewBase validates opts and binds them to def.
func NewBase(def definition.Definition, opts Options) (*Base, error) {
	if def == nil {
		return nil, fmt.Errorf("metadata: definition is required")
	}
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = key[strings.LastIndex(key, ".")+1:]
	}

	common := def.Common()
	b := &Base{
		def:    def,
		common: common,
		key:    key,
		name:   name,
		value:  opts.Value,
		setter: noopSetter,
	}
	if common.UpdateModelOnChange() && opts.SetDomainObjValue != nil {
		b.setter = opts.SetDomainObjValue
	}
	b.order, b.hasOrder = common.Order()
	return b, nil
}

func noopSetter(any) error { return nil }

// NewCustom is the factory for kinds without dedicated metadata.
func NewCustom(def definition.Definition, opts Options) (Field, error) {
	return NewBase(def, opts)
}

func (b *Base) Key() string                       { return b.key }
func (b *Base) Name() string                      { return b.name }
func (b *Base) Tag() definition.Tag               { return b.def.Tag() }
func (b *Base) Definition() definition.Definition { return b.def }
func (b *Base) Label() string                     { return b.common.Label() }
func (b *Base) ErrorMessage() string              { return b.common.ErrorMessage() }
func (b *Base) CSS() css.Classes                  { return b.common.CSS() }

// Extra exposes the extra properties of the definition.
func (b *Base) Extra(key string) (any, bool) {
	return b.common.Extra(key)
}

// Value returns the control value once the control exists, the initial value
// otherwise.
func (b *Base) Value() any {
	b.mu.Lock()
	ctrl := b.ctrl
	b.mu.Unlock()
	if ctrl != nil {
		return ctrl.Value()
	}
	return b.value
}

// Order returns the resolved order and whether one is set.
func (b *Base) Order() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order, b.hasOrder
}

// SetOrder sets the order of this field only; the definition keeps its hint.
func (b *Base) SetOrder(order int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = order
	b.hasOrder = true
}

func (b *Base) Control() control.AbstractControl {
	return b.FormControl()
}

// FormControl returns the control, building it on first use. Value changes
// reach the setter for as long as the field is open.
func (b *Base) FormControl() *control.Control {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		b.ctrl = control.New(b.value,
			control.WithValidators(b.common.Validators()...),
			control.WithAsyncValidators(b.common.AsyncValidators()...),
		)
		b.unsubscribe = b.ctrl.Subscribe(b.onChange)
	}
	return b.ctrl
}

func (b *Base) Errors() validator.Errors {
	b.mu.Lock()
	ctrl := b.ctrl
	b.mu.Unlock()
	if ctrl == nil {
		return nil
	}
	return ctrl.Errors()
}

// Invalid reports whether the control is dirty and fails validation. A
// pristine control is never invalid. With a debounce the flag is refreshed
// after the quiet period.
func (b *Base) Invalid() bool {
	b.mu.Lock()
	ctrl := b.ctrl
	invalid := b.invalid
	b.mu.Unlock()
	if ctrl == nil {
		return false
	}
	if b.common.Debounce() > 0 {
		return invalid
	}
	return isInvalid(ctrl)
}

// Required reports whether one of the validators rejects an empty value as
// required.
func (b *Base) Required() bool {
	return validator.RequiresValue(b.common.Validators()...)
}

// WriteErr returns the last error reported by the setter.
func (b *Base) WriteErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeErr
}

// Flush runs a pending debounced write immediately.
func (b *Base) Flush() {
	b.mu.Lock()
	stopped := b.timer != nil && b.timer.Stop()
	b.mu.Unlock()
	if stopped {
		b.flush()
	}
}

// Close stops the debounce timer and the value subscription. Pending
// debounced writes are dropped.
func (b *Base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

func (b *Base) onChange(value any) {
	debounce := b.common.Debounce()
	if debounce <= 0 {
		b.write(value)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = value
	if b.timer == nil {
		b.timer = time.AfterFunc(debounce, b.flush)
		return
	}
	b.timer.Reset(debounce)
}

func (b *Base) flush() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	value := b.pending
	ctrl := b.ctrl
	b.mu.Unlock()

	b.write(value)
	invalid := isInvalid(ctrl)

	b.mu.Lock()
	b.invalid = invalid
	b.mu.Unlock()
}

func (b *Base) write(value any) {
	err := b.setter(value)
	b.mu.Lock()
	b.writeErr = err
	b.mu.Unlock()
}

func isInvalid(ctrl control.AbstractControl) bool {
	return ctrl.Dirty() && ctrl.Status() == control.StatusInvalid
}

// Extra returns the extra property key of f converted to T.
func Extra[T any](f Field, key string) (T, bool) {
	var zero T
	if f == nil {
		return zero, false
	}
	raw, ok := f.Extra(key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	return value, ok
}

var _ Field = (*Base)(nil)
