// Package tui renders forms as terminal prompt sessions. Every enabled field
// is asked in layout order, answers flow through the field controls so the
// same validators apply, and the collected values are serialized on submit.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/layout"
	"github.com/goliatone/go-dorf/pkg/metadata"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/visibility"
	"github.com/goliatone/go-dorf/pkg/widgets"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	maxAttempts       int
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
		theme:        Theme{SectionPrefix: "== ", ErrorPrefix: "! "},
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

type session struct {
	*Renderer
	form         *form.Form
	opts         render.RenderOptions
	widgets      *widgets.Registry
	visibility   visibility.Evaluator
	serverErrors map[string][]string
}

// visible evaluates the rule of field against the answers so far. Hidden
// fields are disabled so they neither validate nor submit.
func (s session) visible(field metadata.Field) (bool, error) {
	ok, err := visibility.Visible(s.visibility, field, s.opts.VisibilityScope(s.form))
	if err != nil {
		return false, fmt.Errorf("tui: %w", err)
	}
	if !ok {
		field.Control().Disable()
		s.logger.Debug("tui: field hidden", zap.String("field", field.Key()))
	}
	return ok, nil
}

// Render prompts for every enabled field, submits the form and returns the
// serialized values. An invalid form after prompting returns form.ErrInvalid.
func (r *Renderer) Render(ctx context.Context, f *form.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("tui: form is nil")
	}

	mapping := render.MapErrors(f, opts.Errors)
	s := session{
		Renderer:     r,
		form:         f,
		opts:         opts,
		widgets:      opts.WidgetRegistry(),
		visibility:   opts.VisibilityEvaluator(),
		serverErrors: mapping.Fields,
	}
	if opts.Title != "" {
		if err := r.driver.Info(ctx, r.theme.SectionPrefix+opts.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range mapping.Form {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	if err := s.rows(ctx, f.Rows()); err != nil {
		return nil, err
	}

	if err := f.Submit(ctx); err != nil {
		if errors.Is(err, form.ErrInvalid) {
			for _, message := range groupMessages(f) {
				_ = r.driver.Info(ctx, r.theme.ErrorPrefix+message)
			}
		}
		return nil, fmt.Errorf("tui: submit: %w", err)
	}

	values := f.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	r.logger.Debug("tui: collected values", zap.String("form", f.ID()), zap.Int("fields", len(values)))
	return r.serialize(values)
}

func (s session) rows(ctx context.Context, rows []layout.Row) error {
	for _, row := range rows {
		if row.IsBreak() {
			nested := row.Nested
			if nested.Control().Disabled() {
				continue
			}
			if ok, err := s.visible(nested); err != nil || !ok {
				if err != nil {
					return err
				}
				continue
			}
			if label := nested.Label(); label != "" {
				if err := s.driver.Info(ctx, s.theme.SectionPrefix+label); err != nil {
					return err
				}
			}
			if err := s.rows(ctx, layout.Group(nested.NestedFields(), nested.Columns())); err != nil {
				return err
			}
			continue
		}
		for _, field := range row.Fields {
			if err := s.field(ctx, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s session) field(ctx context.Context, field metadata.Field) error {
	ctrl, ok := field.Control().(*control.Control)
	if !ok || ctrl.Disabled() {
		return nil
	}
	if ok, err := s.visible(field); err != nil || !ok {
		return err
	}
	for _, message := range s.serverErrors[field.Key()] {
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		value, problem, err := s.ask(ctx, field, ctrl.Value())
		if err != nil {
			return err
		}
		if problem == "" {
			ctrl.Input(value)
			ctrl.MarkAsTouched()
			if flusher, ok := field.(interface{ Flush() }); ok {
				flusher.Flush()
			}
			if err := ctrl.AwaitValidation(ctx); err != nil {
				return err
			}
			if len(field.Errors()) == 0 {
				return nil
			}
		}

		messages := render.ErrorMessages(field)
		if problem != "" {
			messages = []string{problem}
		}
		for _, message := range messages {
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+message); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Key())
}

// ask prompts once with the prompt matching the field's widget. problem is
// set when the answer cannot be converted to the field's value type.
func (s session) ask(ctx context.Context, field metadata.Field, current any) (any, string, error) {
	label := field.Label()
	if label == "" {
		label = field.Key()
	}
	help, _ := metadata.Extra[string](field, render.HelpExtra)
	widget, _ := s.widgets.Resolve(field)
	cfg := InputConfig{Message: label, Default: text(current), Help: help}

	if choice, ok := field.(metadata.Choice); ok {
		return s.choose(ctx, choice, widget == widgets.WidgetMultiSelect, label, help, current)
	}

	switch widget {
	case widgets.WidgetCheckbox:
		checked, _ := current.(bool)
		answer, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: help})
		return answer, "", err

	case widgets.WidgetPassword:
		answer, err := s.driver.Password(ctx, cfg)
		return answer, "", err

	case widgets.WidgetTextArea:
		answer, err := s.driver.TextArea(ctx, cfg)
		return answer, "", err

	case widgets.WidgetNumber:
		answer, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			return nil, "", nil
		}
		num, perr := strconv.ParseFloat(trimmed, 64)
		if perr != nil {
			return nil, fmt.Sprintf("%s must be a number", label), nil
		}
		return num, "", nil
	}

	answer, err := s.driver.Input(ctx, cfg)
	return answer, "", err
}

func (s session) choose(ctx context.Context, field metadata.Choice, multiple bool, label, help string, current any) (any, string, error) {
	options, err := field.Options()
	if err != nil {
		return nil, "", fmt.Errorf("tui: %s: %w", field.Key(), err)
	}
	if len(options) == 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrNoOptions, field.Key())
	}

	labels := make([]string, len(options))
	selected := keySet(current)
	var defaults []int
	for i, option := range options {
		labels[i] = option.Value
		if labels[i] == "" {
			labels[i] = fmt.Sprint(option.Key)
		}
		if selected[fmt.Sprint(option.Key)] {
			defaults = append(defaults, i)
		}
	}

	if multiple {
		indices, err := s.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Defaults: defaults, Help: help})
		if err != nil {
			return nil, "", err
		}
		keys := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				keys = append(keys, options[idx].Key)
			}
		}
		return keys, "", nil
	}

	defaultIndex := -1
	if len(defaults) > 0 {
		defaultIndex = defaults[0]
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIndex, Help: help})
	if err != nil {
		return nil, "", err
	}
	if idx < 0 || idx >= len(options) {
		return nil, "", nil
	}
	return options[idx].Key, "", nil
}

func groupMessages(f *form.Form) []string {
	errs := f.Group().Errors()
	if len(errs) == 0 {
		return nil
	}
	return render.Messages("Form", errs)
}

func keySet(value any) map[string]bool {
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

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		flatten("", values, func(key string, value any) {
			encoded.Add(key, text(value))
		})
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		var lines []string
		flatten("", values, func(key string, value any) {
			lines = append(lines, key+": "+text(value))
		})
		sort.Strings(lines)
		return []byte(strings.Join(lines, "\n") + "\n"), nil
	default:
		payload, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return payload, nil
	}
}

// flatten visits leaf values with dotted keys. Slices repeat their key.
func flatten(prefix string, value any, visit func(key string, value any)) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, v[key], visit)
		}
		return
	case nil:
		visit(prefix, "")
		return
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			visit(prefix, rv.Index(i).Interface())
		}
		return
	}
	visit(prefix, value)
}
