package domain_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/domain"
)

type contact struct {
	Email string `json:"email"`
}

func TestValue_Reflection(t *testing.T) {
	c := &contact{Email: "ada@example.com"}
	if v, ok := domain.Value(c, "email"); !ok || v != "ada@example.com" {
		t.Fatalf("value: %v %v", v, ok)
	}
	set := domain.Setter(c, "email")
	if err := set("lovelace@example.com"); err != nil {
		t.Fatalf("setter: %v", err)
	}
	if c.Email != "lovelace@example.com" {
		t.Fatalf("setter did not write back: %+v", c)
	}
	if err := domain.SetValue(c, "phone", "1"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestObject(t *testing.T) {
	address := domain.NewObject(definition.Map{
		"city": definition.NewInput(definition.InputOptions{}),
	}, map[string]any{"city": "London"})

	person := domain.NewObject(definition.Map{
		"name":    definition.NewInput(definition.InputOptions{}),
		"address": definition.NewNested(definition.NestedOptions{}),
	}, map[string]any{"name": "Ada", "address": address})

	if !definition.IsDomainObject(person) {
		t.Fatalf("object should be a domain object")
	}
	if diff := cmp.Diff([]string{"address", "name"}, domain.Properties(person)); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}

	if err := domain.SetValue(person, "name", "Grace"); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{
		"name":    "Grace",
		"address": map[string]any{"city": "London"},
	}
	if diff := cmp.Diff(want, person.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
