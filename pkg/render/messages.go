package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/metadata"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// MessageFunc formats the details of one error kind.
type MessageFunc func(label string, details any) string

var defaultMessages = map[string]MessageFunc{
	validator.KindRequired: func(label string, _ any) string {
		return label + " is required"
	},
	validator.KindMinLength: func(label string, details any) string {
		return fmt.Sprintf("%s must be at least %s characters", label, detail(details, "requiredLength"))
	},
	validator.KindMaxLength: func(label string, details any) string {
		return fmt.Sprintf("%s must be at most %s characters", label, detail(details, "requiredLength"))
	},
	validator.KindPattern: func(label string, _ any) string {
		return label + " has an invalid format"
	},
	validator.KindMin: func(label string, details any) string {
		return fmt.Sprintf("%s must be greater than or equal to %s", label, detail(details, "min"))
	},
	validator.KindMax: func(label string, details any) string {
		return fmt.Sprintf("%s must be less than or equal to %s", label, detail(details, "max"))
	},
	validator.KindEmail: func(label string, _ any) string {
		return label + " must be a valid email address"
	},
	control.KindAsync: func(label string, details any) string {
		if msg, ok := details.(string); ok && msg != "" {
			return fmt.Sprintf("%s could not be validated: %s", label, msg)
		}
		return label + " could not be validated"
	},
}

// ErrorMessages renders the current errors of field. A field level error
// message replaces the defaults. Unknown kinds fall back to the kind name.
func ErrorMessages(field metadata.Field) []string {
	errs := field.Errors()
	if len(errs) == 0 {
		return nil
	}
	if msg := field.ErrorMessage(); msg != "" {
		return []string{msg}
	}
	label := field.Label()
	if label == "" {
		label = field.Key()
	}
	return Messages(label, errs)
}

// Messages formats errs in kind order.
func Messages(label string, errs validator.Errors) []string {
	kinds := make([]string, 0, len(errs))
	for kind := range errs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var out []string
	for _, kind := range kinds {
		details := errs[kind]
		if kind == validator.KindSchema {
			if list, ok := details.([]string); ok {
				out = append(out, list...)
				continue
			}
		}
		if fn, ok := defaultMessages[kind]; ok {
			out = append(out, fn(label, details))
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", label, kind))
	}
	return normalizeMessages(out)
}

func detail(details any, key string) string {
	m, ok := details.(map[string]any)
	if !ok {
		return ""
	}
	switch v := m[key].(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
