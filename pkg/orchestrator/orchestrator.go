package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/pkg/config"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/document"
	"github.com/goliatone/go-dorf/pkg/domain"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/openapi"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/renderers/html"
	"github.com/goliatone/go-dorf/pkg/renderers/tui"
)

// ErrNoSource is returned when a request names neither a document nor an
// OpenAPI schema.
var ErrNoSource = errors.New("orchestrator: document or openapi source is required")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithImporter injects the OpenAPI importer. The default one applies the
// configured debounce.
func WithImporter(importer *openapi.Importer) Option {
	return func(o *Orchestrator) {
		o.importer = importer
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
// It takes precedence over the configuration file.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithConfig supplies file configuration (columns, debounce, theme, css).
func WithConfig(cfg config.Config) Option {
	return func(o *Orchestrator) {
		o.config = cfg
	}
}

// WithTransformer registers a Transformer that runs on the domain object
// before the form is built.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithHandler sets the submit/reset handler of generated forms.
func WithHandler(handler form.Handler) Option {
	return func(o *Orchestrator) {
		o.handler = handler
	}
}

// WithFormOptions appends options to every form built. They apply after the
// configuration derived ones.
func WithFormOptions(opts ...form.Option) Option {
	return func(o *Orchestrator) {
		o.formOptions = append(o.formOptions, opts...)
	}
}

// WithLogger sets the logger shared with the default importer and renderers.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from a form source to rendered
// output. Missing dependencies are filled with the built-in implementations
// (html and tui renderers, default importer).
type Orchestrator struct {
	importer        *openapi.Importer
	registry        *render.Registry
	defaultRenderer string
	config          config.Config
	transformer     Transformer
	handler         form.Handler
	formOptions     []form.Option
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		config: config.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes where a form comes from and how to render it. Exactly
// one source is used, checked in field order: Document, DocumentPath, Spec,
// SpecPath.
type Request struct {
	Document     *document.Document
	DocumentPath string
	// FS resolves DocumentPath and SpecPath when set.
	FS fs.FS

	Spec *openapi.Spec
	// SpecPath may be an http(s) URL, fetched with the importer's client.
	SpecPath string
	// Component or OperationID selects the schema of an OpenAPI source.
	Component   string
	OperationID string

	// Renderer names the renderer to use. Empty falls back to the
	// orchestrator default.
	Renderer      string
	RenderOptions render.RenderOptions
}

// Source is the resolved input of a request.
type Source struct {
	Object  *domain.Object
	Title   string
	Columns int
	CSS     css.Config
}

// Generate builds the form for req, renders it and closes it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}

	source, err := o.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	f, err := o.newForm(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.CSS == nil {
		classes := o.config.ResolvedCSS().Overlay(source.CSS)
		opts.CSS = &classes
	}
	if opts.Title == "" {
		opts.Title = source.Title
	}

	o.logger.Debug("orchestrator: rendering form",
		zap.String("form", f.ID()),
		zap.String("renderer", renderer.Name()),
	)
	output, err := renderer.Render(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Form builds the form for req without rendering it. Callers own the form
// and must Close it.
func (o *Orchestrator) Form(ctx context.Context, req Request) (*form.Form, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	source, err := o.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.newForm(source)
}

// Resolve loads the request source and applies the transformer.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Source, error) {
	if err := o.ready(ctx); err != nil {
		return Source{}, err
	}

	var (
		source Source
		err    error
	)
	switch {
	case req.Document != nil:
		source, err = o.fromDocument(req.Document)
	case req.DocumentPath != "":
		var doc *document.Document
		if req.FS != nil {
			doc, err = document.LoadFS(req.FS, req.DocumentPath)
		} else {
			doc, err = document.Load(req.DocumentPath)
		}
		if err != nil {
			return Source{}, fmt.Errorf("orchestrator: load document: %w", err)
		}
		source, err = o.fromDocument(doc)
	case req.Spec != nil || req.SpecPath != "":
		source, err = o.fromOpenAPI(ctx, req)
	default:
		return Source{}, ErrNoSource
	}
	if err != nil {
		return Source{}, err
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, source.Object); err != nil {
			return Source{}, fmt.Errorf("orchestrator: transform: %w", err)
		}
	}
	return source, nil
}

func (o *Orchestrator) fromDocument(doc *document.Document) (Source, error) {
	debounce, err := o.config.DebounceDuration()
	if err != nil {
		return Source{}, err
	}
	obj, err := doc.Object(document.WithDefaultDebounce(debounce))
	if err != nil {
		return Source{}, fmt.Errorf("orchestrator: build document: %w", err)
	}
	return Source{Object: obj, Title: doc.Title, Columns: doc.Columns, CSS: doc.CSS}, nil
}

func (o *Orchestrator) fromOpenAPI(ctx context.Context, req Request) (Source, error) {
	spec := req.Spec
	if spec == nil {
		var err error
		switch {
		case openapi.IsURL(req.SpecPath):
			spec, err = o.importer.LoadURL(ctx, req.SpecPath)
		case req.FS != nil:
			spec, err = o.importer.LoadFS(ctx, req.FS, req.SpecPath)
		default:
			spec, err = o.importer.LoadFile(ctx, req.SpecPath)
		}
		if err != nil {
			return Source{}, fmt.Errorf("orchestrator: load openapi: %w", err)
		}
	}

	var (
		obj *domain.Object
		err error
	)
	switch {
	case req.OperationID != "":
		obj, err = o.importer.OperationObject(spec, req.OperationID)
	case req.Component != "":
		obj, err = o.importer.ComponentObject(spec, req.Component)
	default:
		return Source{}, errors.New("orchestrator: component or operation id is required")
	}
	if err != nil {
		return Source{}, fmt.Errorf("orchestrator: import schema: %w", err)
	}
	return Source{Object: obj, Title: spec.Title()}, nil
}

func (o *Orchestrator) newForm(source Source) (*form.Form, error) {
	opts := append([]form.Option{form.WithLogger(o.logger)}, o.config.FormOptions()...)
	if source.Columns > 0 {
		opts = append(opts, form.WithColumns(source.Columns))
	}
	opts = append(opts, o.formOptions...)

	f, err := form.New(o.handler, opts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: new form: %w", err)
	}
	if err := f.SetDomainObject(source.Object); err != nil {
		f.Close()
		return nil, fmt.Errorf("orchestrator: build form: %w", err)
	}
	return f, nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if err := o.config.Validate(); err != nil {
		o.initialiseErr = err
		return
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = o.config.RendererName()
	}
	if o.importer == nil {
		debounce, _ := o.config.DebounceDuration()
		o.importer = openapi.New(
			openapi.WithDefaultDebounce(debounce),
			openapi.WithLogger(o.logger),
		)
	}
	if o.registry != nil {
		return
	}

	htmlRenderer, err := html.New(html.WithLogger(o.logger))
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: init html renderer: %w", err)
		return
	}
	tuiRenderer, err := tui.New(tui.WithLogger(o.logger))
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: init tui renderer: %w", err)
		return
	}
	registry, err := render.NewRegistry(htmlRenderer, tuiRenderer)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: init registry: %w", err)
		return
	}
	o.registry = registry
}
