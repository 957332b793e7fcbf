// Package css models the class-name cascade applied to generated forms.
// Classes resolve across three levels: the general configuration, the
// configuration of a field kind, and the classes declared on a single field
// definition. Closer levels win whenever they set a non-empty value; earlier
// levels are never mutated.
package css

import "strings"

// Classes lists the class names applied around a single field.
type Classes struct {
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Wrapper   string `json:"wrapper,omitempty" yaml:"wrapper,omitempty" toml:"wrapper,omitempty"`
	Group     string `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty" toml:"field,omitempty"`
	HTMLField string `json:"htmlField,omitempty" yaml:"htmlField,omitempty" toml:"htmlField,omitempty"`
}

// Buttons lists the class names of the form action buttons.
type Buttons struct {
	Save  string `json:"save,omitempty" yaml:"save,omitempty" toml:"save,omitempty"`
	Reset string `json:"reset,omitempty" yaml:"reset,omitempty" toml:"reset,omitempty"`
	Group string `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
}

// FormClasses lists the form-level class names.
type FormClasses struct {
	Form     string  `json:"form,omitempty" yaml:"form,omitempty" toml:"form,omitempty"`
	Fieldset string  `json:"fieldset,omitempty" yaml:"fieldset,omitempty" toml:"fieldset,omitempty"`
	Buttons  Buttons `json:"buttons,omitempty" yaml:"buttons,omitempty" toml:"buttons,omitempty"`
}

// Empty reports whether no class is set.
func (c Classes) Empty() bool {
	return c == Classes{}
}

// Config is the cascade configuration. Kinds is keyed by field tag.
type Config struct {
	General Classes
	Kinds   map[string]Classes
	Form    FormClasses
}

// Merge overlays overrides onto base, slot by slot. Empty override slots keep
// the base value.
func Merge(base Classes, overrides ...Classes) Classes {
	out := base
	for _, o := range overrides {
		out.Label = pick(out.Label, o.Label)
		out.Wrapper = pick(out.Wrapper, o.Wrapper)
		out.Group = pick(out.Group, o.Group)
		out.Error = pick(out.Error, o.Error)
		out.Field = pick(out.Field, o.Field)
		out.HTMLField = pick(out.HTMLField, o.HTMLField)
	}
	return out
}

// MergeForm overlays form-level overrides onto base.
func MergeForm(base FormClasses, overrides ...FormClasses) FormClasses {
	out := base
	for _, o := range overrides {
		out.Form = pick(out.Form, o.Form)
		out.Fieldset = pick(out.Fieldset, o.Fieldset)
		out.Buttons.Save = pick(out.Buttons.Save, o.Buttons.Save)
		out.Buttons.Reset = pick(out.Buttons.Reset, o.Buttons.Reset)
		out.Buttons.Group = pick(out.Buttons.Group, o.Buttons.Group)
	}
	return out
}

// Resolve returns the effective classes for a field of the given kind whose
// definition declares instance.
func (c Config) Resolve(kind string, instance Classes) Classes {
	return Merge(c.General, c.Kinds[kind], instance)
}

// Kind returns the classes configured for kind merged over General.
func (c Config) Kind(kind string) Classes {
	return Merge(c.General, c.Kinds[kind])
}

// Overlay returns a new Config where every level of other is merged over the
// matching level of c.
func (c Config) Overlay(other Config) Config {
	out := Config{
		General: Merge(c.General, other.General),
		Form:    MergeForm(c.Form, other.Form),
	}
	if len(c.Kinds) > 0 || len(other.Kinds) > 0 {
		out.Kinds = make(map[string]Classes, len(c.Kinds)+len(other.Kinds))
		for kind, classes := range c.Kinds {
			out.Kinds[kind] = classes
		}
		for kind, classes := range other.Kinds {
			out.Kinds[kind] = Merge(out.Kinds[kind], classes)
		}
	}
	return out
}

func pick(current, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	return current
}
