// Package html renders forms as HTML fragments through pongo2 templates.
// Nested objects become fieldsets; the CSS cascade decides every class.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/render"
	rendertemplate "github.com/goliatone/go-dorf/pkg/render/template"
	"github.com/goliatone/go-dorf/pkg/render/template/pongo"
)

// Name is the registry name of the renderer.
const Name = "html"

const (
	formTemplate     = "form"
	rowTemplate      = "row"
	fieldsetTemplate = "fieldset"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	policy           *bluemonday.Policy
	stylesheet       string
	inlineStyles     bool
	logger           *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle. Missing files are
// not filled in from the defaults.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir layers a directory over the bundled templates.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = path
	}
}

// WithTemplateRenderer injects a preconfigured template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPolicy replaces the sanitizer applied to help text.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithStylesheet links an external stylesheet before the form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// WithDefaultStyles inlines the bundled stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	policy       *bluemonday.Policy
	stylesheet   string
	inlineStyles string
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the renderer with the bundled templates unless overridden.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		policy:     bluemonday.UGCPolicy(),
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine := cfg.templateRenderer
	if engine == nil {
		opts := []pongo.Option{pongo.WithName(Name), pongo.WithFS(cfg.templateFS)}
		if cfg.templateDir != "" {
			if _, err := os.Stat(cfg.templateDir); err != nil {
				return nil, fmt.Errorf("html renderer: templates dir: %w", err)
			}
			opts = append(opts, pongo.WithBaseDir(cfg.templateDir))
		}
		built, err := pongo.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		engine = built
	}

	r := &Renderer{
		templates:  engine,
		policy:     cfg.policy,
		stylesheet: cfg.stylesheet,
		logger:     cfg.logger,
	}
	if cfg.inlineStyles {
		r.inlineStyles = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render builds the view of f and executes the form template. Nested blocks
// are rendered depth first and handed to their parent already rendered.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	if f == nil {
		return nil, errors.New("html renderer: form is nil")
	}
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	view, err := render.BuildView(f, options)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	rows, err := r.renderRows(ctx, view.Rows)
	if err != nil {
		return nil, err
	}

	out, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"view":           view,
		"rows":           rows,
		"formErrorClass": options.Classes().General.Error,
		"stylesheet":     r.stylesheet,
		"inlineStyles":   r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}
	r.logger.Debug("html renderer: rendered form",
		zap.String("form", view.ID),
		zap.Int("rows", len(view.Rows)),
		zap.Bool("valid", view.Valid))
	return []byte(out), nil
}

func (r *Renderer) renderRows(ctx context.Context, rows []render.RowView) ([]string, error) {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Block != nil {
			inner, err := r.renderRows(ctx, row.Block.Rows)
			if err != nil {
				return nil, err
			}
			html, err := r.templates.RenderTemplate(fieldsetTemplate, map[string]any{
				"block": row.Block,
				"rows":  inner,
			})
			if err != nil {
				return nil, fmt.Errorf("html renderer: render fieldset %q: %w", row.Block.Key, err)
			}
			out = append(out, html)
			continue
		}

		for i := range row.Fields {
			row.Fields[i].Help = r.policy.Sanitize(row.Fields[i].Help)
		}
		html, err := r.templates.RenderTemplate(rowTemplate, map[string]any{"row": row})
		if err != nil {
			return nil, fmt.Errorf("html renderer: render row: %w", err)
		}
		out = append(out, html)
	}
	return out, nil
}
