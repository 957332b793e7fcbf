// Package dorf generates forms from declarative descriptions. A domain object
// supplies field definitions and values, the mapper turns them into field
// metadata backed by reactive controls, the layout groups them into rows and
// a renderer turns the result into HTML or a terminal session.
//
// The root package re-exports the common entry points; the pkg/ packages
// hold the building blocks.
package dorf

import (
	"context"

	"github.com/goliatone/go-dorf/pkg/config"
	"github.com/goliatone/go-dorf/pkg/document"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/orchestrator"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/renderers/html"
)

// RenderOptions describes per-request data such as server-side errors,
// hidden fields and the CSS cascade.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// Form aliases form.Form.
type Form = form.Form

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewForm creates an empty form. Attach a domain object with
// SetDomainObject.
func NewForm(handler form.Handler, options ...form.Option) (*Form, error) {
	return form.New(handler, options...)
}

// GenerateHTML loads the document at path and renders it with the HTML
// renderer.
func GenerateHTML(ctx context.Context, path string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		DocumentPath: path,
		Renderer:     html.Name,
	})
}

// GenerateHTMLFromDocument renders a pre-loaded document, bypassing the
// loader stage.
func GenerateHTMLFromDocument(ctx context.Context, doc *document.Document, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document:      doc,
		Renderer:      html.Name,
		RenderOptions: opts,
	})
}

// GenerateHTMLFromOpenAPI renders the request body of operationID found in
// the OpenAPI document at path.
func GenerateHTMLFromOpenAPI(ctx context.Context, path, operationID string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		SpecPath:    path,
		OperationID: operationID,
		Renderer:    html.Name,
	})
}

// WithConfigFile loads a YAML, JSON or TOML configuration file and returns
// the orchestrator option carrying it.
func WithConfigFile(path string) (orchestrator.Option, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithConfig(cfg), nil
}
