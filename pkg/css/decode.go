package css

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	keyGeneral = "general"
	keyForm    = "form"
)

// UnmarshalJSON decodes the flat file shape
// {"general": {...}, "form": {...}, "<kind>": {...}}.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("css: decode json: %w", err)
	}
	return c.fromMap(raw)
}

// UnmarshalYAML decodes the same shape as UnmarshalJSON.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("css: decode yaml: %w", err)
	}
	return c.fromMap(raw)
}

// UnmarshalTOML decodes the same shape as UnmarshalJSON from a TOML table.
func (c *Config) UnmarshalTOML(data any) error {
	raw, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("css: expected table, got %T", data)
	}
	return c.fromMap(raw)
}

// MarshalJSON encodes the flat file shape.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Kinds)+2)
	if !c.General.Empty() {
		out[keyGeneral] = c.General
	}
	if c.Form != (FormClasses{}) {
		out[keyForm] = c.Form
	}
	for kind, classes := range c.Kinds {
		out[kind] = classes
	}
	return json.Marshal(out)
}

func (c *Config) fromMap(raw map[string]any) error {
	out := Config{}
	for key, value := range raw {
		name := strings.TrimSpace(key)
		switch name {
		case "":
			continue
		case keyGeneral:
			if err := remarshal(value, &out.General); err != nil {
				return fmt.Errorf("css: general: %w", err)
			}
		case keyForm:
			if err := remarshal(value, &out.Form); err != nil {
				return fmt.Errorf("css: form: %w", err)
			}
		default:
			var classes Classes
			if err := remarshal(value, &classes); err != nil {
				return fmt.Errorf("css: kind %q: %w", name, err)
			}
			if out.Kinds == nil {
				out.Kinds = make(map[string]Classes)
			}
			out.Kinds[name] = classes
		}
	}
	*c = out
	return nil
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
