// Package render defines the renderer contract, a renderer registry and the
// view model renderers build from a form.
package render

import (
	"context"

	"github.com/goliatone/go-dorf/pkg/form"
)

// Renderer turns a built form into a byte representation (HTML, terminal
// session output, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options RenderOptions) ([]byte, error)
}
