package domain

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/goliatone/go-dorf/pkg/definition"
)

// Object is a map-backed domain object. It carries its own definitions map,
// which makes it suitable for forms described at runtime (documents, OpenAPI
// schemas) rather than by Go types.
type Object struct {
	mu          sync.RWMutex
	definitions definition.Map
	values      map[string]any
}

// NewObject returns an object over defs seeded with values. Both maps are
// copied.
func NewObject(defs definition.Map, values map[string]any) *Object {
	obj := &Object{
		definitions: make(definition.Map, len(defs)),
		values:      make(map[string]any, len(values)),
	}
	for name, def := range defs {
		obj.definitions[name] = def
	}
	for name, value := range values {
		obj.values[name] = value
	}
	return obj
}

func (o *Object) FieldDefinitions() definition.Map {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(definition.Map, len(o.definitions))
	for name, def := range o.definitions {
		out[name] = def
	}
	return out
}

func (o *Object) FieldValue(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	value, ok := o.values[name]
	return value, ok
}

func (o *Object) SetFieldValue(name string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[name] = value
	return nil
}

// Values returns a copy of the values. Nested objects are expanded into
// maps.
func (o *Object) Values() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]any, len(o.values))
	for name, value := range o.values {
		if nested, ok := value.(*Object); ok {
			out[name] = nested.Values()
			continue
		}
		out[name] = value
	}
	return out
}

// Properties lists defined property names in sorted order.
func (o *Object) Properties() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := lo.Keys(o.definitions)
	sort.Strings(names)
	return names
}

var (
	_ Accessor                = (*Object)(nil)
	_ definition.DomainObject = (*Object)(nil)
)
