package render

import (
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/visibility"
	"github.com/goliatone/go-dorf/pkg/visibility/expr"
	"github.com/goliatone/go-dorf/pkg/widgets"
)

// RenderOptions carry per-request data. None of it mutates the form.
type RenderOptions struct {
	// CSS is the resolved cascade. Nil means css.Defaults().
	CSS *css.Config
	// Title is rendered above the form when set.
	Title string
	// Action and Method populate the HTML form element. Method defaults to
	// POST.
	Action string
	Method string
	// Errors holds server side messages keyed by field path. Paths are
	// normalised with MapErrors, unknown paths become form level messages.
	Errors map[string][]string
	// Hidden fields are emitted before the visible controls.
	Hidden []HiddenField
	// ShowAllErrors reports errors on pristine fields as well.
	ShowAllErrors bool
	// SaveLabel and ResetLabel override the action button captions.
	SaveLabel  string
	ResetLabel string
	// Widgets resolves presentation widgets. Nil means widgets.Default().
	Widgets *widgets.Registry
	// Visibility evaluates visibleWhen rules. Nil means the expr evaluator.
	Visibility visibility.Evaluator
	// VisibilityExtras is exposed to rules under the "extras." prefix.
	VisibilityExtras map[string]any
}

// Classes returns the configured cascade or the defaults.
func (o RenderOptions) Classes() css.Config {
	if o.CSS == nil {
		return css.Defaults()
	}
	return *o.CSS
}

// WidgetRegistry returns the configured registry or the shared default.
func (o RenderOptions) WidgetRegistry() *widgets.Registry {
	if o.Widgets == nil {
		return widgets.Default()
	}
	return o.Widgets
}

// VisibilityEvaluator returns the configured evaluator or the expr one.
func (o RenderOptions) VisibilityEvaluator() visibility.Evaluator {
	if o.Visibility == nil {
		return expr.New()
	}
	return o.Visibility
}

// VisibilityScope snapshots the values of f for rule evaluation.
func (o RenderOptions) VisibilityScope(f *form.Form) visibility.Context {
	return visibility.Context{Values: f.Values(), Extras: o.VisibilityExtras}
}
