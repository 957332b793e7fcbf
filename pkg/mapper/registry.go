package mapper

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

// ErrUnknownTag is returned when no factory is registered for a tag.
var ErrUnknownTag = errors.New("mapper: unknown field tag")

// Registry resolves field tags to metadata factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[definition.Tag]metadata.Factory
}

// NewRegistry returns a registry seeded with the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[definition.Tag]metadata.Factory)}
	r.MustRegister(definition.TagInput, metadata.NewInput)
	r.MustRegister(definition.TagSelect, metadata.NewSelect)
	r.MustRegister(definition.TagRadio, metadata.NewRadio)
	r.MustRegister(definition.TagCheckbox, metadata.NewCheckbox)
	r.MustRegister(definition.TagNested, metadata.NewNested)
	return r
}

// Register adds a factory for tag. Duplicate tags return an error.
func (r *Registry) Register(tag definition.Tag, factory metadata.Factory) error {
	if tag == "" {
		return fmt.Errorf("mapper: tag is required")
	}
	if factory == nil {
		return fmt.Errorf("mapper: factory for %q is required", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("mapper: tag %q already registered", tag)
	}
	r.factories[tag] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag definition.Tag, factory metadata.Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered for tag.
func (r *Registry) Lookup(tag definition.Tag) (metadata.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[tag]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTag, tag)
	}
	return factory, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag definition.Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[tag]
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []definition.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := lo.Keys(r.factories)
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
