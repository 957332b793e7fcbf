package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/domain"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// ExtensionKey is the schema extension read for presentation hints.
const ExtensionKey = "x-dorf"

// HelpExtra is the extras key that receives schema descriptions.
const HelpExtra = "help"

// Extension is the decoded x-dorf object.
type Extension struct {
	Order               *int              `json:"order,omitempty"`
	Label               string            `json:"label,omitempty"`
	Placeholder         string            `json:"placeholder,omitempty"`
	Widget              string            `json:"widget,omitempty"`
	InputType           string            `json:"inputType,omitempty"`
	Columns             int               `json:"columns,omitempty"`
	TransparentFlow     bool              `json:"transparentFlow,omitempty"`
	Debounce            string            `json:"debounce,omitempty"`
	UpdateModelOnChange *bool             `json:"updateModelOnChange,omitempty"`
	OnSummary           bool              `json:"onSummary,omitempty"`
	ErrorMessage        string            `json:"errorMessage,omitempty"`
	CSS                 css.Classes       `json:"css,omitempty"`
	Extras              map[string]any    `json:"extras,omitempty"`
	OptionLabels        map[string]string `json:"optionLabels,omitempty"`
	Skip                bool              `json:"skip,omitempty"`
}

var formatInputTypes = map[string]string{
	"email":     "email",
	"password":  "password",
	"date":      "date",
	"date-time": "datetime-local",
	"time":      "time",
	"uri":       "url",
	"url":       "url",
}

// ComponentObject converts the named component schema into a domain object.
func (i *Importer) ComponentObject(spec *Spec, name string) (*domain.Object, error) {
	schema, err := spec.Component(name)
	if err != nil {
		return nil, err
	}
	return i.Object(schema)
}

// OperationObject converts the request body schema of an operation into a
// domain object.
func (i *Importer) OperationObject(spec *Spec, operationID string) (*domain.Object, error) {
	schema, err := spec.RequestSchema(operationID)
	if err != nil {
		return nil, err
	}
	return i.Object(schema)
}

// Object converts an object schema. Defaults become initial values and
// nested object properties become nested objects.
func (i *Importer) Object(schema *openapi3.Schema) (*domain.Object, error) {
	if schema == nil || schemaType(schema) != "object" {
		return nil, ErrNotObject
	}
	return i.object(schema, "", map[*openapi3.Schema]bool{})
}

// Definitions converts an object schema into a definitions map.
func (i *Importer) Definitions(schema *openapi3.Schema) (definition.Map, error) {
	obj, err := i.Object(schema)
	if err != nil {
		return nil, err
	}
	return obj.FieldDefinitions(), nil
}

func (i *Importer) object(schema *openapi3.Schema, parent string, visiting map[*openapi3.Schema]bool) (*domain.Object, error) {
	visiting[schema] = true
	defer delete(visiting, schema)

	required := lo.SliceToMap(schema.Required, func(name string) (string, bool) { return name, true })
	names := lo.Keys(schema.Properties)
	sort.Strings(names)

	defs := make(definition.Map, len(names))
	values := make(map[string]any, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		path := name
		if parent != "" {
			path = parent + "." + name
		}
		prop := ref.Value
		ext, err := extension(prop)
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", path, err)
		}
		if ext.Skip || prop.ReadOnly {
			continue
		}
		if visiting[prop] {
			i.logger.Debug("openapi: skipping recursive property", zap.String("property", path))
			continue
		}

		def, value, err := i.property(name, path, prop, ext, required[name], visiting)
		if err != nil {
			return nil, err
		}
		if def == nil {
			i.logger.Debug("openapi: skipping unsupported property",
				zap.String("property", path),
				zap.String("type", schemaType(prop)))
			continue
		}
		defs[name] = def
		if value != nil {
			values[name] = value
		}
	}
	return domain.NewObject(defs, values), nil
}

func (i *Importer) property(name, path string, prop *openapi3.Schema, ext Extension, required bool, visiting map[*openapi3.Schema]bool) (definition.Definition, any, error) {
	opts, err := i.options(name, path, prop, ext, required)
	if err != nil {
		return nil, nil, err
	}
	typ := schemaType(prop)

	switch {
	case typ == "object":
		child, err := i.object(prop, path, visiting)
		if err != nil {
			return nil, nil, err
		}
		opts.UpdateModelOnChange = false
		return definition.NewNested(definition.NestedOptions{
			Options:         opts,
			Columns:         ext.Columns,
			TransparentFlow: ext.TransparentFlow,
		}), child, nil

	case typ == "array":
		if prop.Items == nil || prop.Items.Value == nil || len(prop.Items.Value.Enum) == 0 {
			return nil, nil, nil
		}
		return definition.NewSelect(definition.SelectOptions{
			ChooseOptions: definition.ChooseOptions{
				Options:         opts,
				OptionsToSelect: enumOptions(prop.Items.Value.Enum, ext),
			},
			Multiple: true,
		}), prop.Default, nil

	case len(prop.Enum) > 0:
		choose := definition.ChooseOptions{Options: opts, OptionsToSelect: enumOptions(prop.Enum, ext)}
		if ext.Widget == "radio" {
			return definition.NewRadio(choose), prop.Default, nil
		}
		return definition.NewSelect(definition.SelectOptions{ChooseOptions: choose}), prop.Default, nil

	case typ == "boolean":
		value := prop.Default
		if value == nil {
			value = false
		}
		return definition.NewCheckbox(opts), value, nil

	case typ == "string", typ == "integer", typ == "number":
		return definition.NewInput(definition.InputOptions{
			Options:     opts,
			Type:        inputType(typ, prop.Format, ext),
			Placeholder: ext.Placeholder,
		}), prop.Default, nil
	}
	return nil, nil, nil
}

func (i *Importer) options(name, path string, prop *openapi3.Schema, ext Extension, required bool) (definition.Options, error) {
	label := ext.Label
	if label == "" {
		label = prop.Title
	}
	if label == "" {
		label = i.labeler(name)
	}

	validators, err := constraints(prop, required)
	if err != nil {
		return definition.Options{}, fmt.Errorf("openapi: property %q: %w", path, err)
	}

	debounce := i.debounce
	if ext.Debounce != "" {
		debounce, err = time.ParseDuration(ext.Debounce)
		if err != nil {
			return definition.Options{}, fmt.Errorf("openapi: property %q: debounce: %w", path, err)
		}
	}

	extras := make(map[string]any, len(ext.Extras)+1)
	for k, v := range ext.Extras {
		extras[k] = v
	}
	if _, ok := extras[HelpExtra]; !ok && prop.Description != "" {
		extras[HelpExtra] = prop.Description
	}

	updateModel := true
	if ext.UpdateModelOnChange != nil {
		updateModel = *ext.UpdateModelOnChange
	}

	return definition.Options{
		Label:               label,
		Validators:          validators,
		ErrorMessage:        ext.ErrorMessage,
		OnSummary:           ext.OnSummary,
		CSS:                 ext.CSS,
		Extras:              extras,
		Debounce:            debounce,
		UpdateModelOnChange: updateModel,
		Order:               ext.Order,
	}, nil
}

func constraints(prop *openapi3.Schema, required bool) ([]validator.Func, error) {
	var out []validator.Func
	if required {
		out = append(out, validator.Required())
	}
	if prop.MinLength > 0 {
		out = append(out, validator.MinLength(int(prop.MinLength)))
	}
	if prop.MaxLength != nil {
		out = append(out, validator.MaxLength(int(*prop.MaxLength)))
	}
	if prop.Pattern != "" {
		if _, err := regexp.Compile(prop.Pattern); err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		out = append(out, validator.Pattern(prop.Pattern))
	}
	if prop.Min != nil {
		out = append(out, validator.Min(*prop.Min))
	}
	if prop.Max != nil {
		out = append(out, validator.Max(*prop.Max))
	}
	if prop.Format == "email" {
		out = append(out, validator.Email())
	}
	return out, nil
}

func enumOptions(values []any, ext Extension) []definition.Option {
	return lo.Map(values, func(value any, _ int) definition.Option {
		key := fmt.Sprint(value)
		label, ok := ext.OptionLabels[key]
		if !ok {
			label = key
		}
		return definition.Option{Key: value, Value: label}
	})
}

func inputType(typ, format string, ext Extension) string {
	if ext.InputType != "" {
		return ext.InputType
	}
	if mapped, ok := formatInputTypes[format]; ok {
		return mapped
	}
	if typ == "integer" || typ == "number" {
		return "number"
	}
	return "text"
}

// schemaType returns the first non-null type. Schemas with properties but no
// type are treated as objects.
func schemaType(schema *openapi3.Schema) string {
	if schema.Type != nil {
		for _, typ := range schema.Type.Slice() {
			if typ != "null" {
				return typ
			}
		}
	}
	if len(schema.Properties) > 0 {
		return "object"
	}
	return ""
}

func extension(schema *openapi3.Schema) (Extension, error) {
	var ext Extension
	raw, ok := schema.Extensions[ExtensionKey]
	if !ok || raw == nil {
		return ext, nil
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return ext, fmt.Errorf("%s: %w", ExtensionKey, err)
	}
	if err := json.Unmarshal(payload, &ext); err != nil {
		return ext, fmt.Errorf("%s: %w", ExtensionKey, err)
	}
	return ext, nil
}
