// Package widgets picks the presentation widget of a field. Renderers switch
// on the resolved name rather than on field kinds so callers can plug in
// their own widgets.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dorf/pkg/metadata"
)

// Extra is the extras key holding an explicit widget name.
const Extra = "widget"

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText        = "text"
	WidgetTextArea    = "textarea"
	WidgetPassword    = "password"
	WidgetNumber      = "number"
	WidgetCheckbox    = "checkbox"
	WidgetRadio       = "radio"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multi-select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field metadata.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on the explicit extra or
// registered matchers. Higher priority wins; ties fall back to registration
// order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a shared registry holding the built-ins.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority. Blank names
// and nil matchers are ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. The Extra key is honoured
// before matcher evaluation.
func (r *Registry) Resolve(field metadata.Field) (string, bool) {
	if field == nil {
		return "", false
	}
	if explicit, ok := metadata.Extra[string](field, Extra); ok && strings.TrimSpace(explicit) != "" {
		return strings.TrimSpace(explicit), true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func inputType(field metadata.Field) (string, bool) {
	input, ok := field.(*metadata.Input)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(input.Type())), true
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetPassword, 90, func(field metadata.Field) bool {
		typ, ok := inputType(field)
		return ok && typ == "password"
	})

	r.Register(WidgetNumber, 80, func(field metadata.Field) bool {
		typ, ok := inputType(field)
		return ok && (typ == "number" || typ == "range")
	})

	r.Register(WidgetMultiSelect, 70, func(field metadata.Field) bool {
		sel, ok := field.(*metadata.Select)
		return ok && sel.Multiple()
	})

	r.Register(WidgetSelect, 60, func(field metadata.Field) bool {
		_, ok := field.(*metadata.Select)
		return ok
	})

	r.Register(WidgetRadio, 60, func(field metadata.Field) bool {
		_, ok := field.(*metadata.Radio)
		return ok
	})

	r.Register(WidgetCheckbox, 60, func(field metadata.Field) bool {
		_, ok := field.(*metadata.Checkbox)
		return ok
	})

	r.Register(WidgetText, 0, func(field metadata.Field) bool {
		_, ok := field.(*metadata.Input)
		return ok
	})
}
