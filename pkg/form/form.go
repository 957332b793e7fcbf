// Package form orchestrates a domain object, its field metadata, the layout
// rows and the control group. Every time the domain object changes the whole
// set is rebuilt.
package form

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/internal/idgen"
	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/layout"
	"github.com/goliatone/go-dorf/pkg/mapper"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

var (
	// ErrInvalid is returned by Submit when the control group is not valid.
	ErrInvalid = errors.New("form: form is invalid")
	// ErrNoDomainObject is returned when an operation needs a domain object
	// and none is set.
	ErrNoDomainObject = errors.New("form: no domain object")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("form: form is closed")
)

var formsDisabled atomic.Bool

// SetFormsDisabled toggles the process-wide policy that disables every
// control right after it is built. It applies to forms built afterwards.
func SetFormsDisabled(disabled bool) {
	formsDisabled.Store(disabled)
}

// FormsDisabled reports the process-wide disabled policy.
func FormsDisabled() bool {
	return formsDisabled.Load()
}

// Handler receives the submit and reset hooks of a form.
type Handler interface {
	OnSubmit(ctx context.Context, f *Form) error
	OnReset(ctx context.Context, f *Form) error
}

// HandlerFuncs adapts plain functions to Handler. Nil functions are no-ops.
type HandlerFuncs struct {
	Submit func(ctx context.Context, f *Form) error
	Reset  func(ctx context.Context, f *Form) error
}

func (h HandlerFuncs) OnSubmit(ctx context.Context, f *Form) error {
	if h.Submit == nil {
		return nil
	}
	return h.Submit(ctx, f)
}

func (h HandlerFuncs) OnReset(ctx context.Context, f *Form) error {
	if h.Reset == nil {
		return nil
	}
	return h.Reset(ctx, f)
}

// OptionsListener is notified when the async options of a field settle. err
// is set when the source failed.
type OptionsListener func(field metadata.Field, options []definition.Option, err error)

// Option customises a Form.
type Option func(*Form)

// WithMapper injects the mapper used on every rebuild.
func WithMapper(m *mapper.Mapper) Option {
	return func(f *Form) {
		if m != nil {
			f.mapper = m
		}
	}
}

// WithGroupValidator sets the cross-field validator of the control group.
func WithGroupValidator(fn control.GroupValidator) Option {
	return func(f *Form) {
		if fn != nil {
			f.groupValidator = fn
		}
	}
}

// WithColumns sets the column count of the top-level layout.
func WithColumns(columns int) Option {
	return func(f *Form) {
		if columns > 0 {
			f.columns = columns
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithID overrides the generated form id.
func WithID(id string) Option {
	return func(f *Form) {
		f.id = id
	}
}

// WithOptionsListener registers a listener for async option resolution.
func WithOptionsListener(listener OptionsListener) Option {
	return func(f *Form) {
		if listener != nil {
			f.listeners = append(f.listeners, listener)
		}
	}
}

// Form owns the metadata, rows and control group built from a domain
// object.
type Form struct {
	id             string
	handler        Handler
	mapper         *mapper.Mapper
	groupValidator control.GroupValidator
	columns        int
	logger         *zap.Logger
	listeners      []OptionsListener

	buildMu sync.Mutex
	mu      sync.RWMutex
	object  definition.DomainObject
	fields  []metadata.Field
	rows    []layout.Row
	group   *control.Group
	cancel  context.CancelFunc
	watches sync.WaitGroup
	closed  bool
}

// New returns a form without a domain object. A nil handler ignores submit
// and reset.
func New(handler Handler, opts ...Option) (*Form, error) {
	if handler == nil {
		handler = HandlerFuncs{}
	}
	f := &Form{
		handler:        handler,
		groupValidator: control.AlwaysValidGroup,
		columns:        definition.DefaultColumns,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.mapper == nil {
		f.mapper = mapper.New(mapper.WithLogger(f.logger))
	}
	if f.id == "" {
		id, err := idgen.FormID()
		if err != nil {
			return nil, fmt.Errorf("form: %w", err)
		}
		f.id = id
	}
	f.group = control.NewGroup(f.groupValidator)
	return f, nil
}

// MustNew panics when New fails.
func MustNew(handler Handler, opts ...Option) *Form {
	f, err := New(handler, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Form) ID() string {
	return f.id
}

// Columns returns the top-level column count.
func (f *Form) Columns() int {
	return f.columns
}

// SetDomainObject binds obj and rebuilds. Setting the same pointer again is a
// no-op; any other value triggers a full rebuild. On error the previous state
// is kept.
func (f *Form) SetDomainObject(obj definition.DomainObject) error {
	f.mu.RLock()
	same := f.fields != nil && sameObject(f.object, obj)
	f.mu.RUnlock()
	if same {
		return nil
	}
	return f.build(obj)
}

// Rebuild rebuilds from the current domain object.
func (f *Form) Rebuild() error {
	f.mu.RLock()
	obj := f.object
	f.mu.RUnlock()
	if obj == nil {
		return ErrNoDomainObject
	}
	return f.build(obj)
}

func (f *Form) build(obj definition.DomainObject) error {
	f.buildMu.Lock()
	defer f.buildMu.Unlock()

	f.mu.RLock()
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	fields, err := f.mapper.Map(obj)
	if err != nil {
		return fmt.Errorf("form: build %s: %w", f.id, err)
	}

	group := control.NewGroup(f.groupValidator)
	for _, field := range fields {
		if err := group.Add(field.Name(), field.Control()); err != nil {
			closeFields(fields)
			return fmt.Errorf("form: build %s: %w", f.id, err)
		}
	}
	disabled := FormsDisabled()
	if disabled {
		group.Disable()
	}
	rows := layout.Group(fields, f.columns)
	ctx, cancel := context.WithCancel(context.Background())

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		cancel()
		closeFields(fields)
		return ErrClosed
	}
	previousFields, previousCancel := f.fields, f.cancel
	f.object, f.fields, f.rows, f.group, f.cancel = obj, fields, rows, group, cancel
	f.mu.Unlock()

	if previousCancel != nil {
		previousCancel()
	}
	closeFields(previousFields)
	f.watchOptions(ctx, fields)

	f.logger.Debug("form rebuilt",
		zap.String("form", f.id),
		zap.Int("fields", len(fields)),
		zap.Int("rows", len(rows)),
		zap.Bool("disabled", disabled),
	)
	return nil
}

// watchOptions waits for async option sources until ctx is cancelled by the
// next rebuild or Close. Failures are logged and reported to listeners;
// OptionsToSelect keeps returning an empty list for them.
func (f *Form) watchOptions(ctx context.Context, fields []metadata.Field) {
	metadata.Walk(fields, func(field metadata.Field) {
		choice, ok := field.(metadata.Choice)
		if !ok || !choice.Chooser().HasAsyncOptions() {
			return
		}
		f.watches.Add(1)
		go func() {
			defer f.watches.Done()
			options, err := choice.Chooser().WaitOptions(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				f.logger.Warn("async options failed",
					zap.String("form", f.id),
					zap.String("field", field.Key()),
					zap.Error(err),
				)
			} else {
				f.logger.Debug("async options resolved",
					zap.String("form", f.id),
					zap.String("field", field.Key()),
					zap.Int("options", len(options)),
				)
			}
			for _, listener := range f.listeners {
				listener(field, options, err)
			}
		}()
	})
}

// Object returns the bound domain object.
func (f *Form) Object() definition.DomainObject {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.object
}

// Fields returns the top-level fields in order.
func (f *Form) Fields() []metadata.Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]metadata.Field(nil), f.fields...)
}

// Field finds a field by key, including nested keys such as
// "address.street".
func (f *Form) Field(key string) (metadata.Field, bool) {
	var found metadata.Field
	metadata.Walk(f.Fields(), func(field metadata.Field) {
		if found == nil && field.Key() == key {
			found = field
		}
	})
	return found, found != nil
}

// Rows returns the top-level layout.
func (f *Form) Rows() []layout.Row {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]layout.Row(nil), f.rows...)
}

// Group returns the control group. It is empty until a domain object is set.
func (f *Form) Group() *control.Group {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.group
}

func (f *Form) Valid() bool {
	return f.Group().Valid()
}

// Values returns the values of the enabled controls.
func (f *Form) Values() map[string]any {
	return f.Group().Values()
}

// Submit flushes debounced writes, marks every control touched and calls
// OnSubmit when the group is valid. An invalid group returns ErrInvalid
// without calling the handler.
func (f *Form) Submit(ctx context.Context) error {
	if f.Object() == nil {
		return ErrNoDomainObject
	}
	fields := f.Fields()
	metadata.Walk(fields, func(field metadata.Field) {
		if flusher, ok := field.(interface{ Flush() }); ok {
			flusher.Flush()
		}
	})
	group := f.Group()
	group.MarkAsTouched()
	if group.Status() != control.StatusValid {
		return ErrInvalid
	}
	if err := f.handler.OnSubmit(ctx, f); err != nil {
		return fmt.Errorf("form: submit %s: %w", f.id, err)
	}
	return nil
}

// Reset restores every control to its initial value and calls OnReset.
func (f *Form) Reset(ctx context.Context) error {
	f.Group().Reset()
	if err := f.handler.OnReset(ctx, f); err != nil {
		return fmt.Errorf("form: reset %s: %w", f.id, err)
	}
	return nil
}

// Close stops async option watchers and closes every field. The form cannot
// be rebuilt afterwards.
func (f *Form) Close() {
	f.buildMu.Lock()
	defer f.buildMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	fields, cancel := f.fields, f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	closeFields(fields)
	f.watches.Wait()
}

func closeFields(fields []metadata.Field) {
	for _, field := range fields {
		field.Close()
	}
}

// sameObject compares pointers only; other kinds always count as a change.
func sameObject(a, b definition.DomainObject) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || va.Kind() != reflect.Pointer {
		return false
	}
	return va.Pointer() == vb.Pointer()
}
