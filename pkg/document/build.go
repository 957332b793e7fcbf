package document

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/domain"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// BuildOption tunes Object.
type BuildOption func(*builder)

// WithDefaultDebounce applies d to fields that do not set a debounce.
func WithDefaultDebounce(d time.Duration) BuildOption {
	return func(b *builder) {
		if d > 0 {
			b.debounce = d
		}
	}
}

type builder struct {
	debounce time.Duration
}

// Object builds the domain object described by the document. Nested fields
// become nested objects stored as the parent's value.
func (d *Document) Object(opts ...BuildOption) (*domain.Object, error) {
	if d == nil {
		return nil, fmt.Errorf("document: nil document")
	}
	b := builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b.object(d.Fields, "")
}

func (b builder) object(fields map[string]Field, parent string) (*domain.Object, error) {
	defs := make(definition.Map, len(fields))
	values := make(map[string]any, len(fields))
	for _, name := range sortedNames(fields) {
		field := fields[name]
		path := joinPath(parent, name)
		def, err := field.definition(path, b.debounce)
		if err != nil {
			return nil, err
		}
		defs[name] = def

		if field.Tag == definition.TagNested {
			child, err := b.object(field.Fields, path)
			if err != nil {
				return nil, err
			}
			values[name] = child
			continue
		}
		if field.Value != nil {
			values[name] = field.Value
		} else if field.Tag == definition.TagCheckbox {
			values[name] = false
		}
	}
	return domain.NewObject(defs, values), nil
}

func (f Field) definition(path string, fallback time.Duration) (definition.Definition, error) {
	opts, err := f.commonOptions(path, fallback)
	if err != nil {
		return nil, err
	}
	switch f.Tag {
	case definition.TagInput:
		return definition.NewInput(definition.InputOptions{
			Options:     opts,
			Type:        f.Type,
			Placeholder: f.Placeholder,
		}), nil
	case definition.TagCheckbox:
		return definition.NewCheckbox(opts), nil
	case definition.TagSelect:
		return definition.NewSelect(definition.SelectOptions{
			ChooseOptions: definition.ChooseOptions{Options: opts, OptionsToSelect: f.options()},
			Multiple:      f.Multiple,
		}), nil
	case definition.TagRadio:
		return definition.NewRadio(definition.ChooseOptions{Options: opts, OptionsToSelect: f.options()}), nil
	case definition.TagNested:
		return definition.NewNested(definition.NestedOptions{
			Options:         opts,
			Columns:         f.Columns,
			TransparentFlow: f.TransparentFlow,
		}), nil
	}
	return nil, fmt.Errorf("document: field %q: unknown tag %q", path, f.Tag)
}

func (f Field) commonOptions(path string, fallback time.Duration) (definition.Options, error) {
	validators, err := f.validators(path)
	if err != nil {
		return definition.Options{}, err
	}
	debounce, err := parseDebounce(f.Debounce)
	if err != nil {
		return definition.Options{}, fmt.Errorf("document: field %q: %w", path, err)
	}
	if len(f.Debounce) == 0 {
		debounce = fallback
	}
	updateModel := f.Tag != definition.TagNested
	if f.UpdateModelOnChange != nil {
		updateModel = *f.UpdateModelOnChange
	}
	return definition.Options{
		Label:               f.Label,
		Validators:          validators,
		ErrorMessage:        f.ErrorMessage,
		OnSummary:           f.OnSummary,
		CSS:                 f.CSS,
		Extras:              f.Extras,
		Debounce:            debounce,
		UpdateModelOnChange: updateModel,
		Order:               f.Order,
	}, nil
}

func (f Field) validators(path string) ([]validator.Func, error) {
	var out []validator.Func
	if f.Required {
		out = append(out, validator.Required())
	}
	if f.MinLength != nil {
		out = append(out, validator.MinLength(*f.MinLength))
	}
	if f.MaxLength != nil {
		out = append(out, validator.MaxLength(*f.MaxLength))
	}
	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return nil, fmt.Errorf("document: field %q: pattern: %w", path, err)
		}
		out = append(out, validator.Pattern(f.Pattern))
	}
	if f.Min != nil {
		out = append(out, validator.Min(*f.Min))
	}
	if f.Max != nil {
		out = append(out, validator.Max(*f.Max))
	}
	if f.Email {
		out = append(out, validator.Email())
	}
	if len(f.Schema) > 0 {
		fn, err := validator.JSONSchema(f.Schema)
		if err != nil {
			return nil, fmt.Errorf("document: field %q: %w", path, err)
		}
		out = append(out, fn)
	}
	return out, nil
}

func (f Field) options() []definition.Option {
	return lo.Map(f.Options, func(o Option, _ int) definition.Option {
		value := o.Value
		if value == "" {
			value = fmt.Sprint(o.Key)
		}
		return definition.Option{Key: o.Key, Value: value}
	})
}

// parseDebounce accepts a duration string or a number of milliseconds.
func parseDebounce(raw json.RawMessage) (time.Duration, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return 0, fmt.Errorf("debounce: %w", err)
		}
		return d, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("debounce: expected duration or milliseconds, got %s", raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func sortedNames(fields map[string]Field) []string {
	names := lo.Keys(fields)
	sort.Strings(names)
	return names
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
