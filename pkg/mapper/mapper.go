// Package mapper turns a domain object and its definitions map into an
// ordered list of field metadata.
package mapper

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/domain"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

// OptionsResolver builds the runtime options of the property name of obj.
// The mapper fills in Key and MapNested afterwards.
type OptionsResolver func(obj any, name string, def definition.Definition) (metadata.Options, error)

// DefaultOptionsResolver reads the value through domain.Value and writes it
// back through domain.SetValue.
func DefaultOptionsResolver(obj any, name string, _ definition.Definition) (metadata.Options, error) {
	value, _ := domain.Value(obj, name)
	return metadata.Options{
		Name:              name,
		Value:             value,
		SetDomainObjValue: domain.Setter(obj, name),
	}, nil
}

// Mapper maps domain objects to field metadata.
type Mapper struct {
	registry *Registry
	resolve  OptionsResolver
	logger   *zap.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithRegistry replaces the built-in registry.
func WithRegistry(registry *Registry) Option {
	return func(m *Mapper) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithOptionsResolver overrides how values and setters are resolved, e.g.
// to adapt backend-shaped objects.
func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(m *Mapper) {
		if resolver != nil {
			m.resolve = resolver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns a mapper using NewRegistry and DefaultOptionsResolver unless
// overridden.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		registry: NewRegistry(),
		resolve:  DefaultOptionsResolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Registry returns the tag registry.
func (m *Mapper) Registry() *Registry {
	return m.registry
}

// Map maps obj with its own definitions.
func (m *Mapper) Map(obj definition.DomainObject) ([]metadata.Field, error) {
	if !definition.IsDomainObject(obj) {
		return nil, fmt.Errorf("mapper: %T %w", obj, metadata.ErrNotDomainObject)
	}
	return m.MapObjectWithDefinitions(obj, obj.FieldDefinitions(), "")
}

// MapObjectWithDefinitions builds one field per entry of defs. Properties are
// visited in sorted name order. Fields with an explicit order keep it; the
// others are numbered after the largest explicit order in visiting order.
// The result is sorted by order, ties keeping visiting order. parent prefixes
// the keys of nested fields.
func (m *Mapper) MapObjectWithDefinitions(obj any, defs definition.Map, parent string) ([]metadata.Field, error) {
	names := defs.Keys()
	fields := make([]metadata.Field, 0, len(names))

	for _, name := range names {
		field, err := m.mapField(obj, name, defs[name], parent)
		if err != nil {
			closeAll(fields)
			return nil, err
		}
		fields = append(fields, field)
	}

	assignOrder(fields)
	sort.SliceStable(fields, func(i, j int) bool {
		left, _ := fields[i].Order()
		right, _ := fields[j].Order()
		return left < right
	})

	m.logger.Debug("mapped fields",
		zap.String("parent", parent),
		zap.Int("count", len(fields)),
	)
	return fields, nil
}

func (m *Mapper) mapField(obj any, name string, def definition.Definition, parent string) (metadata.Field, error) {
	key := joinKey(parent, name)
	if def == nil {
		return nil, fmt.Errorf("mapper: field %q: definition is nil", key)
	}
	factory, err := m.registry.Lookup(def.Tag())
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	opts, err := m.resolve(obj, name, def)
	if err != nil {
		return nil, fmt.Errorf("mapper: field %q: resolve options: %w", key, err)
	}
	opts.Key = key
	if opts.Name == "" {
		opts.Name = name
	}
	opts.MapNested = m.mapNested

	field, err := factory(def, opts)
	if err != nil {
		return nil, fmt.Errorf("mapper: field %q: %w", key, err)
	}
	return field, nil
}

func (m *Mapper) mapNested(obj definition.DomainObject, parent string) ([]metadata.Field, error) {
	return m.MapObjectWithDefinitions(obj, obj.FieldDefinitions(), parent)
}

func assignOrder(fields []metadata.Field) {
	next := 0
	for _, field := range fields {
		if order, ok := field.Order(); ok && order >= next {
			next = order + 1
		}
	}
	for _, field := range fields {
		if _, ok := field.Order(); ok {
			continue
		}
		field.SetOrder(next)
		next++
	}
}

func joinKey(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func closeAll(fields []metadata.Field) {
	for _, field := range fields {
		field.Close()
	}
}
