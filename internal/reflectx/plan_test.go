package reflectx

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type audit struct {
	CreatedBy string
}

type person struct {
	audit
	Name     string `dorf:"name"`
	Age      int    `json:"age,omitempty"`
	Nickname *string
	Secret   string `json:"-"`
	internal string
}

func TestFields(t *testing.T) {
	got := Fields(&person{})
	want := []string{"CreatedBy", "name", "age", "Nickname"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if Fields(42) != nil {
		t.Fatalf("non-struct should have no fields")
	}
}

func TestGetSet_Struct(t *testing.T) {
	p := &person{Name: "Ada", Age: 36}
	p.internal = "x"

	if v, ok := Get(p, "name"); !ok || v != "Ada" {
		t.Fatalf("get name: %v %v", v, ok)
	}
	if v, ok := Get(*p, "AGE"); !ok || v != 36 {
		t.Fatalf("case-insensitive get: %v %v", v, ok)
	}
	if _, ok := Get(p, "secret"); ok {
		t.Fatalf("json:\"-\" fields must be hidden")
	}

	if err := Set(p, "age", int64(37)); err != nil {
		t.Fatalf("set age: %v", err)
	}
	if err := Set(p, "Nickname", "countess"); err != nil {
		t.Fatalf("set pointer field: %v", err)
	}
	if err := Set(p, "createdby", "admin"); err != nil {
		t.Fatalf("set promoted field: %v", err)
	}
	if p.Age != 37 || p.Nickname == nil || *p.Nickname != "countess" || p.CreatedBy != "admin" {
		t.Fatalf("unexpected person after set: %+v", p)
	}

	if err := Set(p, "name", nil); err != nil || p.Name != "" {
		t.Fatalf("nil should reset to zero value: %v %q", err, p.Name)
	}
	if err := Set(p, "name", 12); !errors.Is(err, ErrNotAssignable) {
		t.Fatalf("expected ErrNotAssignable, got %v", err)
	}
	if err := Set(p, "missing", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := Set(*p, "name", "x"); !errors.Is(err, ErrNotAddressable) {
		t.Fatalf("expected ErrNotAddressable, got %v", err)
	}
}

func TestGetSet_Map(t *testing.T) {
	values := map[string]any{"city": "London"}
	if v, ok := Get(values, "city"); !ok || v != "London" {
		t.Fatalf("get map: %v %v", v, ok)
	}
	if err := Set(values, "zip", "N1"); err != nil {
		t.Fatalf("set map: %v", err)
	}
	if values["zip"] != "N1" {
		t.Fatalf("map not updated: %v", values)
	}
}
