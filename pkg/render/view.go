package render

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-dorf/internal/idgen"
	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/layout"
	"github.com/goliatone/go-dorf/pkg/metadata"
	"github.com/goliatone/go-dorf/pkg/visibility"
)

// HelpExtra is the extras key rendered as help text under a field.
const HelpExtra = "help"

// View is the renderer independent snapshot of a form.
type View struct {
	ID         string          `json:"id"`
	Title      string          `json:"title,omitempty"`
	Action     string          `json:"action,omitempty"`
	Method     string          `json:"method"`
	Classes    css.FormClasses `json:"classes"`
	Rows       []RowView       `json:"rows"`
	Hidden     []HiddenField   `json:"hidden,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Valid      bool            `json:"valid"`
	Disabled   bool            `json:"disabled"`
	SaveLabel  string          `json:"saveLabel"`
	ResetLabel string          `json:"resetLabel"`
}

// RowView is a run of fields or a breaking nested block.
type RowView struct {
	Class  string      `json:"class,omitempty"`
	Fields []FieldView `json:"fields,omitempty"`
	Block  *BlockView  `json:"block,omitempty"`
}

// BlockView is a nested object rendered as its own group.
type BlockView struct {
	ID       string      `json:"id"`
	Key      string      `json:"key"`
	Legend   string      `json:"legend,omitempty"`
	Class    string      `json:"class"`
	Classes  css.Classes `json:"classes"`
	Columns  int         `json:"columns"`
	Invalid  bool        `json:"invalid"`
	Disabled bool        `json:"disabled"`
	Rows     []RowView   `json:"rows"`
}

// OptionView is a choice entry.
type OptionView struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FieldView is a single control.
type FieldView struct {
	ID          string         `json:"id"`
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Tag         string         `json:"tag"`
	Widget      string         `json:"widget,omitempty"`
	Label       string         `json:"label,omitempty"`
	InputType   string         `json:"inputType,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Value       string         `json:"value"`
	Checked     bool           `json:"checked"`
	Multiple    bool           `json:"multiple"`
	Options     []OptionView   `json:"options,omitempty"`
	Classes     css.Classes    `json:"classes"`
	Required    bool           `json:"required"`
	Invalid     bool           `json:"invalid"`
	Disabled    bool           `json:"disabled"`
	Errors      []string       `json:"errors,omitempty"`
	Help        string         `json:"help,omitempty"`
	Extras      map[string]any `json:"extras,omitempty"`
}

// BuildView snapshots f for rendering. Server side errors in opts.Errors are
// merged into the matching fields. Fields whose visibility rule fails are
// left out; a malformed rule is an error.
func BuildView(f *form.Form, opts RenderOptions) (View, error) {
	cfg := opts.Classes()
	mapping := MapErrors(f, opts.Errors)

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "POST"
	}
	save, reset := opts.SaveLabel, opts.ResetLabel
	if save == "" {
		save = "Save"
	}
	if reset == "" {
		reset = "Reset"
	}

	b := &viewBuilder{
		formID:       f.ID(),
		cfg:          cfg,
		opts:         opts,
		serverErrors: mapping.Fields,
		widgets:      opts.WidgetRegistry(),
		visibility:   opts.VisibilityEvaluator(),
		scope:        opts.VisibilityScope(f),
	}
	rows := b.rows(f.Rows())
	if b.err != nil {
		return View{}, b.err
	}
	view := View{
		ID:         f.ID(),
		Title:      opts.Title,
		Action:     opts.Action,
		Method:     method,
		Classes:    cfg.Form,
		Rows:       rows,
		Hidden:     SortedHiddenFields(opts.Hidden),
		Errors:     mapping.Form,
		Valid:      f.Valid(),
		SaveLabel:  save,
		ResetLabel: reset,
	}
	if group := f.Group(); group != nil {
		view.Disabled = group.Disabled()
	}
	return view, nil
}

type viewBuilder struct {
	formID       string
	cfg          css.Config
	opts         RenderOptions
	serverErrors map[string][]string
	widgets      widgetResolver
	visibility   visibility.Evaluator
	scope        visibility.Context
	err          error
}

type widgetResolver interface {
	Resolve(field metadata.Field) (string, bool)
}

// visible records the first rule error and hides the field.
func (b *viewBuilder) visible(field metadata.Field) bool {
	if b.err != nil {
		return false
	}
	ok, err := visibility.Visible(b.visibility, field, b.scope)
	if err != nil {
		b.err = err
		return false
	}
	return ok
}

func (b *viewBuilder) rows(rows []layout.Row) []RowView {
	out := make([]RowView, 0, len(rows))
	for _, row := range rows {
		if row.IsBreak() {
			if b.visible(row.Nested) {
				out = append(out, RowView{Block: b.block(row.Nested)})
			}
			continue
		}
		view := RowView{Fields: make([]FieldView, 0, len(row.Fields))}
		for _, field := range row.Fields {
			if !b.visible(field) {
				continue
			}
			fv := b.field(field)
			if view.Class == "" {
				view.Class = fv.Classes.Group
			}
			view.Fields = append(view.Fields, fv)
		}
		if len(view.Fields) > 0 {
			out = append(out, view)
		}
	}
	return out
}

func (b *viewBuilder) block(nested *metadata.Nested) *BlockView {
	classes := b.cfg.Resolve(nested.Tag().String(), nested.CSS())
	return &BlockView{
		ID:       idgen.FieldID(b.formID, nested.Key()),
		Key:      nested.Key(),
		Legend:   nested.Label(),
		Class:    joinClasses(b.cfg.Form.Fieldset, classes.Wrapper),
		Classes:  classes,
		Columns:  nested.Columns(),
		Invalid:  nested.Invalid(),
		Disabled: nested.Control().Disabled(),
		Rows:     b.rows(layout.Group(nested.NestedFields(), nested.Columns())),
	}
}

func (b *viewBuilder) field(field metadata.Field) FieldView {
	ctrl := field.Control()
	value := ctrl.Value()
	view := FieldView{
		ID:       idgen.FieldID(b.formID, field.Key()),
		Key:      field.Key(),
		Name:     field.Key(),
		Tag:      field.Tag().String(),
		Label:    field.Label(),
		Value:    stringValue(value),
		Classes:  b.cfg.Resolve(field.Tag().String(), field.CSS()),
		Required: field.Required(),
		Disabled: ctrl.Disabled(),
		Extras:   field.Definition().Common().Extras(),
	}
	if help, ok := metadata.Extra[string](field, HelpExtra); ok {
		view.Help = help
	}
	if widget, ok := b.widgets.Resolve(field); ok {
		view.Widget = widget
	}

	switch typed := field.(type) {
	case *metadata.Input:
		view.InputType = typed.Type()
		view.Placeholder = typed.Placeholder()
	case *metadata.Checkbox:
		view.Checked = truthy(value)
	case *metadata.Select:
		view.Multiple = typed.Multiple()
		view.Options = b.options(typed, value)
	case *metadata.Radio:
		view.Options = b.options(typed, value)
	}

	showErrors := field.Invalid() || (b.opts.ShowAllErrors && ctrl.Status() == control.StatusInvalid)
	if showErrors {
		view.Errors = ErrorMessages(field)
	}
	if server := b.serverErrors[field.Key()]; len(server) > 0 {
		view.Errors = normalizeMessages(append(view.Errors, server...))
	}
	view.Invalid = len(view.Errors) > 0
	return view
}

// options records a missing option source as the build error.
func (b *viewBuilder) options(choice metadata.Choice, value any) []OptionView {
	options, err := choice.Options()
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("render: field %q: %w", choice.Key(), err)
		}
		return nil
	}
	selected := selectedKeys(value)
	out := make([]OptionView, 0, len(options))
	for _, option := range options {
		key := fmt.Sprint(option.Key)
		out = append(out, OptionView{Key: key, Label: optionLabel(option), Selected: selected[key]})
	}
	return out
}

func optionLabel(option definition.Option) string {
	if option.Value != "" {
		return option.Value
	}
	return fmt.Sprint(option.Key)
}

func selectedKeys(value any) map[string]bool {
	out := map[string]bool{}
	if value == nil {
		return out
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			out[fmt.Sprint(rv.Index(i).Interface())] = true
		}
		return out
	}
	out[fmt.Sprint(value)] = true
	return out
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on" || v == "1"
	}
	return false
}

func joinClasses(classes ...string) string {
	var out []string
	for _, class := range classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, " ")
}
