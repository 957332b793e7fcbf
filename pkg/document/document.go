// Package document loads declarative form documents. A document lists the
// fields of a form (tag, label, order, options, validators, CSS, extras and
// initial values) in YAML, JSON or TOML, is checked against an embedded JSON
// Schema, and yields a map-backed domain object ready for the mapper.
package document

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/validator"
)

//go:embed schema/document.schema.json
var schemaFS embed.FS

const schemaPath = "schema/document.schema.json"

// ErrInvalidDocument wraps structural problems reported by the document
// schema.
var ErrInvalidDocument = errors.New("document: invalid document")

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("document: unsupported extension %q", filepath.Ext(path))
}

// Document is a decoded form document.
type Document struct {
	Title   string           `json:"title,omitempty"`
	Columns int              `json:"columns,omitempty"`
	CSS     css.Config       `json:"css,omitempty"`
	Fields  map[string]Field `json:"fields"`

	location string
}

// Option is a static choice entry.
type Option struct {
	Key   any    `json:"key"`
	Value string `json:"value,omitempty"`
}

// Field describes one property of the form.
type Field struct {
	Tag                 definition.Tag   `json:"tag"`
	Label               string           `json:"label,omitempty"`
	Order               *int             `json:"order,omitempty"`
	Type                string           `json:"type,omitempty"`
	Placeholder         string           `json:"placeholder,omitempty"`
	ErrorMessage        string           `json:"errorMessage,omitempty"`
	OnSummary           bool             `json:"onSummary,omitempty"`
	Debounce            json.RawMessage  `json:"debounce,omitempty"`
	UpdateModelOnChange *bool            `json:"updateModelOnChange,omitempty"`
	CSS                 css.Classes      `json:"css,omitempty"`
	Extras              map[string]any   `json:"extras,omitempty"`
	Required            bool             `json:"required,omitempty"`
	Email               bool             `json:"email,omitempty"`
	MinLength           *int             `json:"minLength,omitempty"`
	MaxLength           *int             `json:"maxLength,omitempty"`
	Pattern             string           `json:"pattern,omitempty"`
	Min                 *float64         `json:"min,omitempty"`
	Max                 *float64         `json:"max,omitempty"`
	Schema              json.RawMessage  `json:"schema,omitempty"`
	Options             []Option         `json:"options,omitempty"`
	Multiple            bool             `json:"multiple,omitempty"`
	Columns             int              `json:"columns,omitempty"`
	TransparentFlow     bool             `json:"transparentFlow,omitempty"`
	Fields              map[string]Field `json:"fields,omitempty"`
	Value               any              `json:"value,omitempty"`
}

// Location returns the path the document was loaded from, if any.
func (d *Document) Location() string {
	return d.location
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", path, err)
	}
	return parseAt(path, data)
}

// LoadFS reads and parses path from fsys.
func LoadFS(fsys fs.FS, path string) (*Document, error) {
	if fsys == nil {
		return nil, errors.New("document: fs is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", path, err)
	}
	return parseAt(path, data)
}

func parseAt(path string, data []byte) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.location = path
	return doc, nil
}

// Parse decodes data, validates it against the document schema and returns
// the typed document.
func Parse(data []byte, format Format) (*Document, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("document: decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("document: decode json: %w", err)
		}
	case FormatTOML:
		var table map[string]any
		if _, err := toml.Decode(string(data), &table); err != nil {
			return nil, fmt.Errorf("document: decode toml: %w", err)
		}
		raw = table
	default:
		return nil, fmt.Errorf("document: unsupported format %q", format)
	}

	// Round trip through JSON so every decoder yields the same shapes.
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("document: normalise: %w", err)
	}
	var normalised any
	if err := json.Unmarshal(payload, &normalised); err != nil {
		return nil, fmt.Errorf("document: normalise: %w", err)
	}

	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(normalised); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(validator.SchemaMessages(err), "; "))
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("document: decode fields: %w", err)
	}
	return &doc, nil
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile(schemaPath)
		if err != nil {
			schemaErr = fmt.Errorf("document: read schema: %w", err)
			return
		}
		compiledSchema, schemaErr = validator.CompileSchema(raw)
	})
	return compiledSchema, schemaErr
}

// Schema returns the embedded document schema.
func Schema() []byte {
	raw, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		panic(err)
	}
	return raw
}
