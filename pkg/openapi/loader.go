// Package openapi derives field definitions from OpenAPI 3 component schemas
// and operation request bodies.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/internal/labels"
)

var (
	// ErrSchemaNotFound is returned when a component or operation is missing.
	ErrSchemaNotFound = errors.New("openapi: schema not found")
	// ErrNotObject is returned when the selected schema is not an object.
	ErrNotObject = errors.New("openapi: schema is not an object")
)

// Labeler turns a property name into a label.
type Labeler func(name string) string

// Option configures an Importer.
type Option func(*Importer)

// WithLabeler overrides the label derived for properties without a title.
func WithLabeler(labeler Labeler) Option {
	return func(i *Importer) {
		if labeler != nil {
			i.labeler = labeler
		}
	}
}

// WithDefaultDebounce applies d to properties without an x-dorf debounce.
func WithDefaultDebounce(d time.Duration) Option {
	return func(i *Importer) {
		if d > 0 {
			i.debounce = d
		}
	}
}

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs(allowed bool) Option {
	return func(i *Importer) {
		i.externalRefs = allowed
	}
}

// WithValidation validates the document after loading.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Importer loads OpenAPI documents and converts their schemas.
type Importer struct {
	labeler      Labeler
	externalRefs bool
	validate     bool
	debounce     time.Duration
	client       *http.Client
	timeout      time.Duration
	logger       *zap.Logger
}

// New returns an Importer with the given options.
func New(opts ...Option) *Importer {
	i := &Importer{
		labeler: labels.FromName,
		client:  http.DefaultClient,
		timeout: DefaultHTTPTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Spec is a loaded OpenAPI document.
type Spec struct {
	doc *openapi3.T
}

// Load parses raw (JSON or YAML).
func (i *Importer) Load(ctx context.Context, raw []byte) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return &Spec{doc: doc}, nil
}

// LoadFile reads and parses the document at path.
func (i *Importer) LoadFile(ctx context.Context, path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return i.Load(ctx, raw)
}

// LoadFS reads and parses path from fsys.
func (i *Importer) LoadFS(ctx context.Context, fsys fs.FS, path string) (*Spec, error) {
	if fsys == nil {
		return nil, errors.New("openapi: fs is nil")
	}
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return i.Load(ctx, raw)
}

// Title returns the document title.
func (s *Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

// Components lists the component schema names in sorted order.
func (s *Spec) Components() []string {
	if s.doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(s.doc.Components.Schemas))
	for name := range s.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Component returns the named component schema.
func (s *Spec) Component(name string) (*openapi3.Schema, error) {
	if s.doc.Components == nil {
		return nil, fmt.Errorf("%w: component %q", ErrSchemaNotFound, name)
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: component %q", ErrSchemaNotFound, name)
	}
	return ref.Value, nil
}

// OperationIDs lists the operation ids that carry a request body, sorted.
func (s *Spec) OperationIDs() []string {
	var ids []string
	s.eachOperation(func(id string, op *openapi3.Operation) bool {
		if requestSchema(op) != nil {
			ids = append(ids, id)
		}
		return true
	})
	sort.Strings(ids)
	return ids
}

// RequestSchema returns the request body schema of the operation with the
// given id.
func (s *Spec) RequestSchema(operationID string) (*openapi3.Schema, error) {
	var found *openapi3.Schema
	s.eachOperation(func(id string, op *openapi3.Operation) bool {
		if id != operationID {
			return true
		}
		found = requestSchema(op)
		return false
	})
	if found == nil {
		return nil, fmt.Errorf("%w: operation %q", ErrSchemaNotFound, operationID)
	}
	return found, nil
}

func (s *Spec) eachOperation(fn func(id string, op *openapi3.Operation) bool) {
	if s.doc.Paths == nil {
		return
	}
	for path, item := range s.doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if !fn(id, op) {
				return
			}
		}
	}
}

var formMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range formMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
