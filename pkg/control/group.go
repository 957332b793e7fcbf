package control

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-dorf/pkg/validator"
)

// GroupValidator validates the values of a group as a whole, e.g. two fields
// that are individually valid but inconsistent together.
type GroupValidator func(values map[string]any) validator.Errors

// AlwaysValidGroup is the default group validator.
func AlwaysValidGroup(map[string]any) validator.Errors {
	return nil
}

// Group aggregates named controls. Groups nest: a Group is itself an
// AbstractControl whose value is the map of its children's values.
type Group struct {
	mu        sync.RWMutex
	controls  map[string]AbstractControl
	order     []string
	validator GroupValidator
}

// NewGroup returns an empty group. A nil validator means AlwaysValidGroup.
func NewGroup(fn GroupValidator) *Group {
	if fn == nil {
		fn = AlwaysValidGroup
	}
	return &Group{
		controls:  make(map[string]AbstractControl),
		validator: fn,
	}
}

// Add registers ctrl under name. Names must be unique.
func (g *Group) Add(name string, ctrl AbstractControl) error {
	if name == "" {
		return fmt.Errorf("control: group member name is required")
	}
	if ctrl == nil {
		return fmt.Errorf("control: group member %q is nil", name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.controls[name]; exists {
		return fmt.Errorf("control: group member %q already registered", name)
	}
	g.controls[name] = ctrl
	g.order = append(g.order, name)
	return nil
}

// Get returns the member registered under name.
func (g *Group) Get(name string) (AbstractControl, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ctrl, ok := g.controls[name]
	return ctrl, ok
}

// Keys lists member names in registration order.
func (g *Group) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.order...)
}

func (g *Group) members() []AbstractControl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AbstractControl, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.controls[name])
	}
	return out
}

// Values returns the values of the enabled members. Nested groups contribute
// their own value maps.
func (g *Group) Values() map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]any, len(g.order))
	for _, name := range g.order {
		ctrl := g.controls[name]
		if ctrl.Disabled() {
			continue
		}
		out[name] = ctrl.Value()
	}
	return out
}

func (g *Group) Value() any {
	return g.Values()
}

// Errors returns the errors of the group validator only. Member errors stay
// on the members.
func (g *Group) Errors() validator.Errors {
	return g.validator(g.Values())
}

// Status aggregates member statuses: any invalid member (or a failing group
// validator) makes the group invalid; otherwise any pending member makes it
// pending. A group whose members are all disabled is disabled.
func (g *Group) Status() Status {
	members := g.members()
	enabled := 0
	pending := false
	for _, ctrl := range members {
		switch ctrl.Status() {
		case StatusDisabled:
			continue
		case StatusInvalid:
			return StatusInvalid
		case StatusPending:
			pending = true
		}
		enabled++
	}
	if len(members) > 0 && enabled == 0 {
		return StatusDisabled
	}
	if len(g.Errors()) > 0 {
		return StatusInvalid
	}
	if pending {
		return StatusPending
	}
	return StatusValid
}

func (g *Group) Valid() bool {
	return g.Status() == StatusValid
}

func (g *Group) Dirty() bool {
	for _, ctrl := range g.members() {
		if ctrl.Dirty() {
			return true
		}
	}
	return false
}

func (g *Group) Touched() bool {
	for _, ctrl := range g.members() {
		if ctrl.Touched() {
			return true
		}
	}
	return false
}

// Disabled reports whether every member is disabled.
func (g *Group) Disabled() bool {
	members := g.members()
	if len(members) == 0 {
		return false
	}
	for _, ctrl := range members {
		if !ctrl.Disabled() {
			return false
		}
	}
	return true
}

func (g *Group) Disable() {
	for _, ctrl := range g.members() {
		ctrl.Disable()
	}
}

func (g *Group) Enable() {
	for _, ctrl := range g.members() {
		ctrl.Enable()
	}
}

func (g *Group) MarkAsDirty() {
	for _, ctrl := range g.members() {
		ctrl.MarkAsDirty()
	}
}

func (g *Group) MarkAsTouched() {
	for _, ctrl := range g.members() {
		ctrl.MarkAsTouched()
	}
}

func (g *Group) Reset() {
	for _, ctrl := range g.members() {
		ctrl.Reset()
	}
}

var (
	_ AbstractControl = (*Control)(nil)
	_ AbstractControl = (*Group)(nil)
)
