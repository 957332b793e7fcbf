package openapi_test

import (
	"errors"
	"os"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/metadata"
	"github.com/goliatone/go-dorf/pkg/openapi"
	"github.com/goliatone/go-dorf/pkg/testsupport"
	"github.com/goliatone/go-dorf/pkg/validator"
)

func loadSpec(t *testing.T, importer *openapi.Importer) *openapi.Spec {
	t.Helper()
	spec, err := importer.LoadFS(testsupport.Context(), os.DirFS("testdata"), "accounts.yaml")
	if err != nil {
		t.Fatalf("load spec: %v", err)
	}
	return spec
}

func TestSpec_Listing(t *testing.T) {
	spec := loadSpec(t, openapi.New(openapi.WithValidation(true)))

	if spec.Title() != "Accounts API" {
		t.Fatalf("unexpected title %q", spec.Title())
	}
	if diff := cmp.Diff([]string{"Account", "Address", "Node"}, spec.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"createAccount", "put:/accounts/{id}/notes"}, spec.OperationIDs()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if _, err := spec.Component("Missing"); !errors.Is(err, openapi.ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound, got %v", err)
	}
	if _, err := spec.RequestSchema("listAccounts"); !errors.Is(err, openapi.ErrSchemaNotFound) {
		t.Fatalf("operation without body should not resolve, got %v", err)
	}
}

func TestImporter_ComponentDefinitions(t *testing.T) {
	importer := openapi.New()
	spec := loadSpec(t, importer)

	obj, err := importer.ComponentObject(spec, "Account")
	if err != nil {
		t.Fatalf("component object: %v", err)
	}
	defs := obj.FieldDefinitions()
	want := []string{"billing", "displayName", "email", "newsletter", "plan", "seats", "tags"}
	if diff := cmp.Diff(want, defs.Keys()); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}

	name := defs["displayName"].(*definition.Input)
	if name.Label() != "Display name" || name.Placeholder() != "Ada Lovelace" {
		t.Fatalf("displayName: label=%q placeholder=%q", name.Label(), name.Placeholder())
	}
	if errs := name.Validator()(""); !errs.Has(validator.KindRequired) {
		t.Fatalf("required property should validate presence, got %v", errs)
	}
	if errs := name.Validator()("A"); !errs.Has(validator.KindMinLength) {
		t.Fatalf("minLength should be enforced, got %v", errs)
	}

	email := defs["email"].(*definition.Input)
	if email.Type() != "email" {
		t.Fatalf("email input type = %q", email.Type())
	}
	if help, _ := definition.Extra[string](email, openapi.HelpExtra); help != "Used for sign-in." {
		t.Fatalf("description should become help extra, got %q", help)
	}
	if errs := email.Validator()("nope"); !errs.Has(validator.KindEmail) {
		t.Fatalf("email format should validate, got %v", errs)
	}

	plan, ok := defs["plan"].(*definition.Radio)
	if !ok {
		t.Fatalf("plan should be a radio, got %T", defs["plan"])
	}
	options, _ := plan.OptionsToSelect()
	wantOptions := []definition.Option{{Key: "free", Value: "Free"}, {Key: "pro", Value: "Professional"}}
	if diff := cmp.Diff(wantOptions, options); diff != "" {
		t.Fatalf("plan options mismatch (-want +got):\n%s", diff)
	}

	seats := defs["seats"].(*definition.Input)
	if seats.Type() != "number" || !seats.Validator()(float64(51)).Has(validator.KindMax) {
		t.Fatalf("seats should be a bounded number input")
	}

	if _, ok := defs["newsletter"].(*definition.Checkbox); !ok {
		t.Fatalf("newsletter should be a checkbox, got %T", defs["newsletter"])
	}
	if tags, ok := defs["tags"].(*definition.Select); !ok || !tags.Multiple() {
		t.Fatalf("tags should be a multiple select")
	}
	if billing, ok := defs["billing"].(*definition.Nested); !ok || billing.Columns() != 3 {
		t.Fatalf("billing should be a three column nested object")
	}

	values := obj.Values()
	if values["plan"] != "free" || values["newsletter"] != false || values["seats"] != float64(1) {
		t.Fatalf("defaults not applied: %v", values)
	}
}

func TestImporter_DrivesForm(t *testing.T) {
	importer := openapi.New()
	spec := loadSpec(t, importer)
	obj, err := importer.OperationObject(spec, "createAccount")
	if err != nil {
		t.Fatalf("operation object: %v", err)
	}

	f := form.MustNew(nil)
	defer f.Close()
	if err := f.SetDomainObject(obj); err != nil {
		t.Fatalf("set domain object: %v", err)
	}

	var keys []string
	metadata.Walk(f.Fields(), func(field metadata.Field) { keys = append(keys, field.Key()) })
	want := []string{
		"displayName", "email", "billing", "billing.postalCode", "billing.street",
		"newsletter", "plan", "seats", "tags",
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if f.Valid() {
		t.Fatalf("required properties are empty, form should be invalid")
	}
}

func TestImporter_RecursiveAndErrors(t *testing.T) {
	importer := openapi.New(openapi.WithLabeler(func(name string) string { return "<" + name + ">" }))
	spec := loadSpec(t, importer)

	defs, err := importer.Definitions(mustComponent(t, spec, "Node"))
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if diff := cmp.Diff([]string{"name"}, defs.Keys()); diff != "" {
		t.Fatalf("recursive property should be skipped (-want +got):\n%s", diff)
	}
	if defs["name"].Common().Label() != "<name>" {
		t.Fatalf("custom labeler not used: %q", defs["name"].Common().Label())
	}

	email := mustComponent(t, spec, "Account").Properties["email"].Value
	if _, err := importer.Object(email); !errors.Is(err, openapi.ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}

	if _, err := importer.Load(testsupport.Context(), nil); err == nil {
		t.Fatalf("empty payload should fail")
	}
}

func mustComponent(t *testing.T, spec *openapi.Spec, name string) *openapi3.Schema {
	t.Helper()
	schema, err := spec.Component(name)
	if err != nil {
		t.Fatalf("component %s: %v", name, err)
	}
	return schema
}
