package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dorf/pkg/domain"
)

// Transformer mutates the domain object before the form is built. Values
// and field order can be rewritten; definitions are otherwise immutable.
type Transformer interface {
	Transform(ctx context.Context, obj *domain.Object) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, obj *domain.Object) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, obj *domain.Object) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, obj)
}

// Chain runs transformers in order, stopping at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, obj *domain.Object) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, obj); err != nil {
				return err
			}
		}
		return nil
	})
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document. Paths are dotted for nested objects:
//
//	values:
//	  name: Ada
//	  address:
//	    city: London
//	order:
//	  email: 0
//	  address.city: 1
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Values map[string]any `yaml:"values"`
	Order  map[string]int `yaml:"order"`
}

// NewPresetTransformer parses raw YAML or JSON.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the values first, then the order overrides.
func (t *PresetTransformer) Transform(ctx context.Context, obj *domain.Object) error {
	if obj == nil {
		return errors.New("preset transformer: domain object is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := applyValues(obj, t.document.Values, ""); err != nil {
		return err
	}

	paths := make([]string, 0, len(t.document.Order))
	for path := range t.document.Order {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		target, name, err := descend(obj, path)
		if err != nil {
			return err
		}
		def, ok := target.FieldDefinitions()[name]
		if !ok {
			return fmt.Errorf("preset transformer: field %q not found", path)
		}
		def.Common().SetOrder(t.document.Order[path])
	}
	return nil
}

func applyValues(obj *domain.Object, values map[string]any, parent string) error {
	defs := obj.FieldDefinitions()
	for name, value := range values {
		path := name
		if parent != "" {
			path = parent + "." + name
		}
		if _, ok := defs[name]; !ok {
			return fmt.Errorf("preset transformer: field %q not found", path)
		}
		if nested, ok := value.(map[string]any); ok {
			current, _ := obj.FieldValue(name)
			child, ok := current.(*domain.Object)
			if !ok {
				return fmt.Errorf("preset transformer: field %q is not a nested object", path)
			}
			if err := applyValues(child, nested, path); err != nil {
				return err
			}
			continue
		}
		if err := obj.SetFieldValue(name, value); err != nil {
			return fmt.Errorf("preset transformer: set %q: %w", path, err)
		}
	}
	return nil
}

// descend walks the nested objects of a dotted path and returns the owner
// of the last segment.
func descend(obj *domain.Object, path string) (*domain.Object, string, error) {
	segments := strings.Split(path, ".")
	current := obj
	for i, segment := range segments[:len(segments)-1] {
		value, _ := current.FieldValue(segment)
		child, ok := value.(*domain.Object)
		if !ok {
			return nil, "", fmt.Errorf("preset transformer: field %q is not a nested object", strings.Join(segments[:i+1], "."))
		}
		current = child
	}
	return current, segments[len(segments)-1], nil
}
