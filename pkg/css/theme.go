package css

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeTokenPrefix namespaces the tokens read by FromTheme.
const ThemeTokenPrefix = "dorf."

// FromTheme derives a cascade from a go-theme selection. Tokens follow the
// pattern "dorf.<level>.<slot>" where level is "general", "form" or a field
// kind, e.g. "dorf.general.label" or "dorf.form.buttons.save". Variant tokens
// override manifest tokens.
func FromTheme(selection *theme.Selection) Config {
	if selection == nil || selection.Manifest == nil {
		return Config{}
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	return fromTokens(tokens)
}

func fromTokens(tokens map[string]string) Config {
	out := Config{}
	for key, value := range tokens {
		if !strings.HasPrefix(key, ThemeTokenPrefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(key, ThemeTokenPrefix), ".")
		if len(parts) < 2 {
			continue
		}
		level, slot := parts[0], strings.Join(parts[1:], ".")
		switch level {
		case keyGeneral:
			setClassSlot(&out.General, slot, value)
		case keyForm:
			setFormSlot(&out.Form, slot, value)
		default:
			if out.Kinds == nil {
				out.Kinds = make(map[string]Classes)
			}
			classes := out.Kinds[level]
			if setClassSlot(&classes, slot, value) {
				out.Kinds[level] = classes
			}
		}
	}
	return out
}

func setClassSlot(target *Classes, slot, value string) bool {
	switch slot {
	case "label":
		target.Label = value
	case "wrapper":
		target.Wrapper = value
	case "group":
		target.Group = value
	case "error":
		target.Error = value
	case "field":
		target.Field = value
	case "htmlField":
		target.HTMLField = value
	default:
		return false
	}
	return true
}

func setFormSlot(target *FormClasses, slot, value string) {
	switch slot {
	case "form":
		target.Form = value
	case "fieldset":
		target.Fieldset = value
	case "buttons.save":
		target.Buttons.Save = value
	case "buttons.reset":
		target.Buttons.Reset = value
	case "buttons.group":
		target.Buttons.Group = value
	}
}
