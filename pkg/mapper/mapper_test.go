package mapper_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/mapper"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

func input(order *int) *definition.Input {
	return definition.NewInput(definition.InputOptions{
		Options: definition.Options{Order: order, UpdateModelOnChange: true},
	})
}

func keys(fields []metadata.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Key())
	}
	return out
}

type custom struct {
	definition.Base
	tag definition.Tag
}

func (c *custom) Tag() definition.Tag { return c.tag }

func TestMap_ExplicitOrder(t *testing.T) {
	m := mapper.New()
	defs := definition.Map{
		"a": input(definition.Ordered(2)),
		"b": input(definition.Ordered(1)),
	}
	fields, err := m.MapObjectWithDefinitions(map[string]any{}, defs, "")
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, keys(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_MixedOrder(t *testing.T) {
	m := mapper.New()
	defs := definition.Map{
		"zeta":  input(definition.Ordered(0)),
		"alpha": input(nil),
		"delta": input(definition.Ordered(5)),
		"beta":  input(nil),
		"gamma": input(definition.Ordered(5)),
	}
	fields, err := m.MapObjectWithDefinitions(map[string]any{}, defs, "")
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	// Explicit orders first; ties and unordered fields follow name order.
	if diff := cmp.Diff([]string{"zeta", "delta", "gamma", "alpha", "beta"}, keys(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	var orders []int
	for _, f := range fields {
		order, ok := f.Order()
		if !ok {
			t.Fatalf("field %s left without order", f.Key())
		}
		orders = append(orders, order)
	}
	if diff := cmp.Diff([]int{0, 5, 5, 6, 7}, orders); diff != "" {
		t.Fatalf("resolved orders mismatch (-want +got):\n%s", diff)
	}
	if _, ok := defs["alpha"].Common().Order(); ok {
		t.Fatalf("mapper must not write orders back into definitions")
	}
}

func TestMap_UnknownTag(t *testing.T) {
	m := mapper.New()
	defs := definition.Map{
		"name":   input(nil),
		"rating": &custom{Base: definition.NewBase(definition.Options{}), tag: "unknown"},
	}
	_, err := m.MapObjectWithDefinitions(map[string]any{}, defs, "")
	if !errors.Is(err, mapper.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	if want := `field "rating": mapper: unknown field tag "unknown"`; err.Error() != want {
		t.Fatalf("unexpected message\nwant: %s\n got: %v", want, err)
	}
}

func TestRegistry_Custom(t *testing.T) {
	reg := mapper.NewRegistry()
	if err := reg.Register(definition.TagInput, metadata.NewInput); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	reg.MustRegister("rating", metadata.NewCustom)

	want := []definition.Tag{"checkbox", "input", "nested-object", "radio", "rating", "select"}
	if diff := cmp.Diff(want, reg.Tags()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	m := mapper.New(mapper.WithRegistry(reg))
	defs := definition.Map{
		"stars": &custom{Base: definition.NewBase(definition.Options{Label: "Stars"}), tag: "rating"},
	}
	fields, err := m.MapObjectWithDefinitions(map[string]any{"stars": 4}, defs, "")
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if fields[0].Tag() != "rating" || fields[0].Value() != 4 || fields[0].Label() != "Stars" {
		t.Fatalf("unexpected custom field: %s %v %s", fields[0].Tag(), fields[0].Value(), fields[0].Label())
	}
}

type address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

func (*address) FieldDefinitions() definition.Map {
	return definition.Map{
		"street": input(definition.Ordered(1)),
		"city":   input(definition.Ordered(2)),
	}
}

type person struct {
	Name    string   `json:"name"`
	Address *address `json:"address"`
}

func (*person) FieldDefinitions() definition.Map {
	return definition.Map{
		"name":    input(definition.Ordered(1)),
		"address": definition.NewNested(definition.NestedOptions{Options: definition.Options{Order: definition.Ordered(2)}}),
	}
}

func TestMap_NestedAndWriteBack(t *testing.T) {
	p := &person{Name: "Ada", Address: &address{Street: "Main St", City: "London"}}
	fields, err := mapper.New().Map(p)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "address"}, keys(fields)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	nested := fields[1].(*metadata.Nested)
	if diff := cmp.Diff([]string{"address.street", "address.city"}, keys(nested.NestedFields())); diff != "" {
		t.Fatalf("nested keys mismatch (-want +got):\n%s", diff)
	}

	fields[0].Control().(*control.Control).Input("Grace")
	city, _ := nested.Group().Get("city")
	city.(*control.Control).Input("Paris")
	if p.Name != "Grace" || p.Address.City != "Paris" {
		t.Fatalf("values not written back: %+v %+v", p, p.Address)
	}
}

func TestMap_NestedNotDomainObject(t *testing.T) {
	defs := definition.Map{"address": definition.NewNested(definition.NestedOptions{})}
	_, err := mapper.New().MapObjectWithDefinitions(map[string]any{"address": "Main St"}, defs, "")
	if !errors.Is(err, metadata.ErrNotDomainObject) {
		t.Fatalf("expected ErrNotDomainObject, got %v", err)
	}
	if !strings.Contains(err.Error(), "address has to be defined as a recognized domain object") {
		t.Fatalf("error should name the key, got %v", err)
	}
}

func TestMap_OptionsResolver(t *testing.T) {
	payload := map[string]any{"full_name": "Ada Lovelace"}
	resolver := func(obj any, name string, _ definition.Definition) (metadata.Options, error) {
		backend := obj.(map[string]any)
		return metadata.Options{
			Value: backend["full_"+name],
			SetDomainObjValue: func(v any) error {
				backend["full_"+name] = v
				return nil
			},
		}, nil
	}
	m := mapper.New(mapper.WithOptionsResolver(resolver))
	fields, err := m.MapObjectWithDefinitions(payload, definition.Map{"name": input(nil)}, "")
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if fields[0].Value() != "Ada Lovelace" || fields[0].Name() != "name" {
		t.Fatalf("resolver not applied: %v %s", fields[0].Value(), fields[0].Name())
	}
	fields[0].Control().(*control.Control).Input("Ada King")
	if payload["full_name"] != "Ada King" {
		t.Fatalf("resolver setter not used: %v", payload)
	}
}
