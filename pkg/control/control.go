// Package control implements the reactive form controls bound to field
// metadata. A Control tracks a value, its validation state and the
// dirty/touched flags; a Group aggregates controls by name. Validators are
// treated as opaque functions.
package control

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-dorf/pkg/validator"
)

// Status is the validation status of a control.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusInvalid  Status = "INVALID"
	StatusPending  Status = "PENDING"
	StatusDisabled Status = "DISABLED"
)

// KindAsync is the error kind recorded when an async validator fails to
// produce a result.
const KindAsync = "async"

// AbstractControl is implemented by Control and Group.
type AbstractControl interface {
	Value() any
	Status() Status
	Valid() bool
	Errors() validator.Errors
	Dirty() bool
	Touched() bool
	Disabled() bool
	Disable()
	Enable()
	MarkAsDirty()
	MarkAsTouched()
	Reset()
}

// Option configures a Control.
type Option func(*Control)

// WithValidators sets the synchronous validators.
func WithValidators(validators ...validator.Func) Option {
	return func(c *Control) {
		c.validator = validator.Compose(validators...)
	}
}

// WithAsyncValidators sets the async validators. They run only when the
// synchronous validators pass.
func WithAsyncValidators(validators ...validator.AsyncFunc) Option {
	return func(c *Control) {
		c.async = append(c.async[:0:0], validators...)
	}
}

// Control is a single value control. It is safe for concurrent use.
// Subscribers are called synchronously, outside the control's lock.
type Control struct {
	mu        sync.Mutex
	initial   any
	value     any
	validator validator.Func
	async     []validator.AsyncFunc

	errors      validator.Errors
	asyncErrors validator.Errors
	pending     bool
	generation  uint64
	cancel      context.CancelFunc
	settled     chan struct{}

	dirty    bool
	touched  bool
	disabled bool

	nextID      int
	subscribers map[int]func(any)
}

// New returns a control seeded with value and validated immediately.
func New(value any, opts ...Option) *Control {
	c := &Control{
		initial:     value,
		value:       value,
		validator:   validator.AlwaysValid,
		subscribers: make(map[int]func(any)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.mu.Lock()
	c.validateLocked()
	c.mu.Unlock()
	return c
}

func (c *Control) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// SetValue replaces the value, revalidates and notifies subscribers. It does
// not mark the control dirty; see Input.
func (c *Control) SetValue(value any) {
	c.mu.Lock()
	c.value = value
	c.validateLocked()
	subscribers := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(value)
	}
}

// Input records a user edit: the control becomes dirty and the value is set.
func (c *Control) Input(value any) {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
	c.SetValue(value)
}

// Subscribe registers fn for value changes. The returned function removes
// the subscription.
func (c *Control) Subscribe(fn func(value any)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Control) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Valid reports StatusValid. Disabled controls are neither valid nor invalid
// and are skipped by groups.
func (c *Control) Valid() bool {
	return c.Status() == StatusValid
}

// Errors returns the merged synchronous and async errors.
func (c *Control) Errors() validator.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Merge(c.asyncErrors)
}

func (c *Control) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *Control) Touched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

func (c *Control) Disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

func (c *Control) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = true
}

func (c *Control) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = false
}

func (c *Control) MarkAsDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

func (c *Control) MarkAsTouched() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = true
}

// Reset restores the initial value and clears the dirty and touched flags.
// Subscribers are notified of the restored value.
func (c *Control) Reset() {
	c.mu.Lock()
	c.dirty = false
	c.touched = false
	initial := c.initial
	c.mu.Unlock()
	c.SetValue(initial)
}

// AwaitValidation blocks until pending async validators settle or ctx is
// done.
func (c *Control) AwaitValidation(ctx context.Context) error {
	for {
		c.mu.Lock()
		settled := c.settled
		c.mu.Unlock()
		if settled == nil {
			return nil
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Control) statusLocked() Status {
	switch {
	case c.disabled:
		return StatusDisabled
	case len(c.errors) > 0 || len(c.asyncErrors) > 0:
		return StatusInvalid
	case c.pending:
		return StatusPending
	default:
		return StatusValid
	}
}

func (c *Control) snapshotLocked() []func(any) {
	out := make([]func(any), 0, len(c.subscribers))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.subscribers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (c *Control) validateLocked() {
	c.errors = c.validator(c.value)
	c.asyncErrors = nil
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.settled != nil && c.pending {
		close(c.settled)
	}
	c.settled = nil
	c.pending = false

	if len(c.errors) > 0 || len(c.async) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.pending = true
	c.settled = make(chan struct{})
	go c.runAsync(ctx, c.generation, c.value, c.async, c.settled)
}

func (c *Control) runAsync(ctx context.Context, generation uint64, value any, validators []validator.AsyncFunc, settled chan struct{}) {
	var result validator.Errors
	for _, fn := range validators {
		if fn == nil {
			continue
		}
		f := fn(ctx, value)
		if f == nil {
			continue
		}
		errs, err := f.Await(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			errs = validator.Errors{KindAsync: fmt.Sprintf("%v", err)}
		}
		result = result.Merge(errs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return
	}
	c.asyncErrors = result
	c.pending = false
	c.cancel = nil
	close(settled)
	c.settled = nil
}
