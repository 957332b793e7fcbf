// Package visibility decides whether a field is shown, from a rule stored in
// the field's extras and evaluated against the current form values.
package visibility

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dorf/pkg/metadata"
)

// Extra is the extras key holding the visibility rule of a field.
const Extra = "visibleWhen"

// Evaluator determines whether a field should be visible based on a rule
// string and a context of current values.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the form values
// (nested objects as maps) while Extras lets callers inject arbitrary data
// such as user roles or feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Visible evaluates the rule of field. Fields without a rule, or a nil
// evaluator, are visible.
func Visible(eval Evaluator, field metadata.Field, ctx Context) (bool, error) {
	if eval == nil || field == nil {
		return true, nil
	}
	rule, _ := metadata.Extra[string](field, Extra)
	if strings.TrimSpace(rule) == "" {
		return true, nil
	}
	visible, err := eval.Eval(field.Key(), rule, ctx)
	if err != nil {
		return false, fmt.Errorf("visibility: %s: %w", field.Key(), err)
	}
	return visible, nil
}
