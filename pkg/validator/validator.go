// Package validator defines the opaque validator contract used by field
// definitions and controls. A validator inspects the current value and
// returns nil when valid, or an Errors map keyed by error kind. dorf never
// interprets the details; renderers surface them.
package validator

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-dorf/pkg/future"
)

// Canonical error kinds produced by the built-in validators.
const (
	KindRequired  = "required"
	KindMinLength = "minLength"
	KindMaxLength = "maxLength"
	KindPattern   = "pattern"
	KindMin       = "min"
	KindMax       = "max"
	KindEmail     = "email"
	KindSchema    = "schema"
)

// Errors maps an error kind to its details. A nil or empty map means valid.
type Errors map[string]any

// Has reports whether the kind is present.
func (e Errors) Has(kind string) bool {
	if e == nil {
		return false
	}
	_, ok := e[kind]
	return ok
}

// Merge copies the entries of other into a new map. Later entries win.
func (e Errors) Merge(other Errors) Errors {
	if len(e) == 0 && len(other) == 0 {
		return nil
	}
	out := make(Errors, len(e)+len(other))
	for k, v := range e {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Func validates a value synchronously.
type Func func(value any) Errors

// AsyncFunc validates a value and settles the returned future with the
// result. Rejections are reported by controls as a "async" error kind.
type AsyncFunc func(ctx context.Context, value any) *future.Future[Errors]

// AlwaysValid is the default validator of every definition.
func AlwaysValid(any) Errors {
	return nil
}

// Compose runs every validator and merges their errors. Nil entries are
// skipped.
func Compose(validators ...Func) Func {
	switch len(validators) {
	case 0:
		return AlwaysValid
	case 1:
		if validators[0] == nil {
			return AlwaysValid
		}
		return validators[0]
	}
	fns := append([]Func(nil), validators...)
	return func(value any) Errors {
		var out Errors
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if errs := fn(value); len(errs) > 0 {
				out = out.Merge(errs)
			}
		}
		return out
	}
}

// Required fails for nil, blank strings and empty collections. Booleans are
// always present.
func Required() Func {
	return func(value any) Errors {
		if isEmpty(value) {
			return Errors{KindRequired: true}
		}
		return nil
	}
}

// RequiresValue reports whether any of fns rejects an empty value as
// required. Validators that panic on the empty value are assumed not to be
// required checks.
func RequiresValue(fns ...Func) bool {
	for _, fn := range fns {
		if fn != nil && rejectsEmpty(fn) {
			return true
		}
	}
	return false
}

func rejectsEmpty(fn Func) (required bool) {
	defer func() {
		if recover() != nil {
			required = false
		}
	}()
	return fn(nil).Has(KindRequired)
}

// MinLength fails when a non-empty string or collection is shorter than n.
// Empty values are left to Required.
func MinLength(n int) Func {
	return func(value any) Errors {
		length, ok := lengthOf(value)
		if !ok || length == 0 {
			return nil
		}
		if length < n {
			return Errors{KindMinLength: map[string]any{"requiredLength": n, "actualLength": length}}
		}
		return nil
	}
}

// MaxLength fails when a string or collection is longer than n.
func MaxLength(n int) Func {
	return func(value any) Errors {
		length, ok := lengthOf(value)
		if !ok {
			return nil
		}
		if length > n {
			return Errors{KindMaxLength: map[string]any{"requiredLength": n, "actualLength": length}}
		}
		return nil
	}
}

// Pattern fails when a non-empty string does not match expr. String patterns
// are anchored at both ends.
func Pattern(expr string) Func {
	anchored := expr
	if !strings.HasPrefix(anchored, "^") {
		anchored = "^" + anchored
	}
	if !strings.HasSuffix(anchored, "$") {
		anchored += "$"
	}
	re := regexp.MustCompile(anchored)
	return func(value any) Errors {
		if isEmpty(value) {
			return nil
		}
		text := fmt.Sprint(value)
		if !re.MatchString(text) {
			return Errors{KindPattern: map[string]any{"requiredPattern": anchored, "actualValue": text}}
		}
		return nil
	}
}

// Min fails when a numeric value is lower than limit.
func Min(limit float64) Func {
	return func(value any) Errors {
		num, ok := toFloat(value)
		if !ok {
			return nil
		}
		if num < limit {
			return Errors{KindMin: map[string]any{"min": limit, "actual": num}}
		}
		return nil
	}
}

// Max fails when a numeric value is greater than limit.
func Max(limit float64) Func {
	return func(value any) Errors {
		num, ok := toFloat(value)
		if !ok {
			return nil
		}
		if num > limit {
			return Errors{KindMax: map[string]any{"max": limit, "actual": num}}
		}
		return nil
	}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Email fails when a non-empty value is not an email address.
func Email() Func {
	return func(value any) Errors {
		if isEmpty(value) {
			return nil
		}
		if !emailPattern.MatchString(fmt.Sprint(value)) {
			return Errors{KindEmail: true}
		}
		return nil
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func lengthOf(value any) (int, bool) {
	if value == nil {
		return 0, false
	}
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		num, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}
	return 0, false
}
