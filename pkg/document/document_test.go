package document_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/document"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

func TestLoad_AllFormats(t *testing.T) {
	for _, path := range []string{"testdata/contact.yaml", "testdata/contact.toml", "testdata/contact.json"} {
		t.Run(path, func(t *testing.T) {
			doc, err := document.Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if doc.Title != "Contact" || doc.Columns != 2 || doc.Location() != path {
				t.Fatalf("unexpected header: %+v", doc)
			}
			if doc.CSS.General.Label != "form-label" {
				t.Fatalf("document css not decoded: %+v", doc.CSS)
			}

			obj, err := doc.Object()
			if err != nil {
				t.Fatalf("object: %v", err)
			}
			defs := obj.FieldDefinitions()
			if diff := cmp.Diff([]string{"address", "email", "name", "subscribe", "topic"}, defs.Keys()); diff != "" {
				t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
			}

			email := defs["email"].(*definition.Input)
			if email.Type() != "email" || email.Debounce() != 150*time.Millisecond {
				t.Fatalf("email definition: type=%q debounce=%v", email.Type(), email.Debounce())
			}
			if help, ok := definition.Extra[string](email, "help"); !ok || help != "We never share it." {
				t.Fatalf("extras not carried: %q %v", help, ok)
			}

			topic := defs["topic"].(*definition.Select)
			options, err := topic.OptionsToSelect()
			if err != nil {
				t.Fatalf("topic options: %v", err)
			}
			want := []definition.Option{{Key: "sales", Value: "Sales"}, {Key: "support", Value: "support"}}
			if diff := cmp.Diff(want, options); diff != "" {
				t.Fatalf("options mismatch (-want +got):\n%s", diff)
			}

			nested := defs["address"].(*definition.Nested)
			if nested.Columns() != 3 || nested.TransparentFlow() {
				t.Fatalf("nested definition: columns=%d", nested.Columns())
			}
		})
	}
}

func TestDocument_DrivesForm(t *testing.T) {
	doc, err := document.Load("testdata/contact.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	obj, err := doc.Object()
	if err != nil {
		t.Fatalf("object: %v", err)
	}

	f := form.MustNew(nil, form.WithColumns(doc.Columns))
	defer f.Close()
	if err := f.SetDomainObject(obj); err != nil {
		t.Fatalf("set domain object: %v", err)
	}

	var keys []string
	metadata.Walk(f.Fields(), func(field metadata.Field) { keys = append(keys, field.Key()) })
	wantKeys := []string{"name", "email", "topic", "subscribe", "address", "address.city", "address.zip"}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	// email is required and empty.
	if f.Valid() {
		t.Fatalf("form should be invalid while email is empty")
	}
	email, _ := f.Field("email")
	email.Control().(*control.Control).Input("ada@example.com")
	email.(*metadata.Input).Flush()

	zip, _ := f.Field("address.zip")
	zip.Control().(*control.Control).Input("12ab")
	if f.Valid() {
		t.Fatalf("pattern violation should invalidate the form")
	}
	zip.Control().(*control.Control).Input("75001")
	if !f.Valid() {
		t.Fatalf("form should be valid, errors: %v", f.Group().Errors())
	}

	values := obj.Values()
	address, ok := values["address"].(map[string]any)
	if !ok || address["zip"] != "75001" || address["city"] != "London" {
		t.Fatalf("nested values not written back: %v", values)
	}
	if values["email"] != "ada@example.com" || values["subscribe"] != false {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing fields":       `{"title": "x"}`,
		"missing tag":          `{"fields": {"a": {"label": "A"}}}`,
		"unknown tag":          `{"fields": {"a": {"tag": "slider"}}}`,
		"select w/o options":   `{"fields": {"a": {"tag": "select"}}}`,
		"nested w/o fields":    `{"fields": {"a": {"tag": "nested-object"}}}`,
		"input with fields":    `{"fields": {"a": {"tag": "input", "fields": {"b": {"tag": "input"}}}}}`,
		"unknown property":     `{"fields": {"a": {"tag": "input", "lable": "A"}}}`,
		"negative min length":  `{"fields": {"a": {"tag": "input", "minLength": -1}}}`,
		"wrong type for order": `{"fields": {"a": {"tag": "input", "order": "first"}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := document.Parse([]byte(raw), document.FormatJSON)
			if !errors.Is(err, document.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestObject_BuildErrors(t *testing.T) {
	cases := map[string]string{
		"bad pattern":  `{"fields": {"a": {"tag": "input", "pattern": "[0-9"}}}`,
		"bad debounce": `{"fields": {"a": {"tag": "input", "debounce": "soon"}}}`,
		"bad schema":   `{"fields": {"a": {"tag": "input", "schema": {"$ref": "https://example.com/remote.json"}}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := document.Parse([]byte(raw), document.FormatJSON)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := doc.Object(); err == nil {
				t.Fatalf("expected build error")
			}
		})
	}
}

func TestLoadFS_UnsupportedExtension(t *testing.T) {
	if _, err := document.LoadFS(os.DirFS("testdata"), "contact.ini"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := document.LoadFS(os.DirFS("testdata"), "contact.json"); err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if len(document.Schema()) == 0 {
		t.Fatalf("embedded schema should not be empty")
	}
}
