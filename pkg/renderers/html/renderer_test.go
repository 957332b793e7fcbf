package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-dorf/pkg/control"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/domain"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/renderers/html"
	"github.com/goliatone/go-dorf/pkg/testsupport"
)

func newForm(t *testing.T, obj definition.DomainObject) *form.Form {
	t.Helper()
	f := form.MustNew(nil, form.WithID("profile"), form.WithColumns(2))
	t.Cleanup(f.Close)
	if err := f.SetDomainObject(obj); err != nil {
		t.Fatalf("set domain object: %v", err)
	}
	return f
}

func renderString(t *testing.T, r *html.Renderer, f *form.Form, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(testsupport.Context(), f, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, out)
		}
	}
}

func TestRenderer_Person(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.Name() != "html" || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected identity %q %q", r.Name(), r.ContentType())
	}

	f := newForm(t, testsupport.NewPerson())
	out := renderString(t, r, f, render.RenderOptions{
		Title:  "Profile",
		Action: "/people/1",
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", "tok")},
	})

	assertContains(t, out,
		`<form id="profile" class="dorf-form" method="POST" action="/people/1" novalidate>`,
		`<h2>Profile</h2>`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<div class="dorf-row">`,
		`<div class="person-name" data-key="name" data-tag="input">`,
		`<label for="profile-name" class="dorf-label">Name *</label>`,
		`<input type="text" id="profile-name" name="name" value="Ada Lovelace" class="dorf-control" placeholder="Ada Lovelace" required>`,
		`<input type="email" id="profile-email"`,
		`<small id="profile-email-help">We never share it.</small>`,
		`<input type="radio" name="role" value="admin" class="dorf-radio" checked>`,
		`<input type="checkbox" id="profile-newsletter" name="newsletter" value="true" class="dorf-checkbox" checked>`,
		`<fieldset id="profile-address" class="dorf-fieldset dorf-nested" data-columns="2">`,
		`<legend class="dorf-label">Address</legend>`,
		`<option value="uk" selected>United Kingdom</option>`,
		`<button type="submit" class="dorf-save">Save</button>`,
		`<button type="reset" class="dorf-reset">Reset</button>`,
	)

	// Nested fields render inside the fieldset.
	fieldset := out[strings.Index(out, `<fieldset id="profile-address"`):]
	assertContains(t, fieldset, `name="address.street"`, `name="address.country"`)
}

func TestRenderer_ErrorsAndCascade(t *testing.T) {
	cfg := css.Defaults().Overlay(css.Config{
		General: css.Classes{Error: "invalid-feedback", Label: "form-label"},
		Kinds:   map[string]css.Classes{"input": {Field: "form-control"}},
		Form:    css.FormClasses{Buttons: css.Buttons{Save: "btn btn-primary"}},
	})
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	f := newForm(t, testsupport.NewPerson())
	name, _ := f.Field("name")
	name.Control().(*control.Control).Input("")

	out := renderString(t, r, f, render.RenderOptions{
		CSS:       &cfg,
		Errors:    map[string][]string{"body.email": {"already <taken>"}, "__all__": {"stale copy"}},
		SaveLabel: "Update",
	})
	assertContains(t, out,
		`<ul class="invalid-feedback" role="alert">`,
		`<li>stale copy</li>`,
		`class="form-control" placeholder="Ada Lovelace" required aria-invalid="true">`,
		`<li>Name is required</li>`,
		`<li>already &lt;taken&gt;</li>`,
		`<label for="profile-name" class="form-label">`,
		`<button type="submit" class="btn btn-primary" aria-disabled="true">Update</button>`,
	)
}

func TestRenderer_SanitisesHelp(t *testing.T) {
	obj := domain.NewObject(definition.Map{
		"bio": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:  `<b>Bio</b>`,
				Extras: map[string]any{"help": `Use <em>plain</em> text<script>alert(1)</script>`},
			},
		}),
	}, nil)

	r, err := html.New(html.WithDefaultStyles(), html.WithStylesheet("/assets/app.css"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out := renderString(t, r, newForm(t, obj), render.RenderOptions{})

	assertContains(t, out,
		`<link rel="stylesheet" href="/assets/app.css">`,
		`<style>.dorf-form{`,
		`Use <em>plain</em> text</small>`,
		`&lt;b&gt;Bio&lt;/b&gt;`,
		`<textarea id="profile-bio" name="bio" class="dorf-control"></textarea>`,
	)
	if strings.Contains(out, "<script>") {
		t.Fatalf("script should be stripped:\n%s", out)
	}
}

func TestRenderer_VisibilityRules(t *testing.T) {
	obj := domain.NewObject(definition.Map{
		"plan": definition.NewInput(definition.InputOptions{Options: definition.Options{Label: "Plan", Order: definition.Ordered(0)}}),
		"seats": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:  "Seats",
				Order:  definition.Ordered(1),
				Extras: map[string]any{"visibleWhen": "plan == 'team'"},
			},
			Type: "number",
		}),
	}, map[string]any{"plan": "solo"})

	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	f := newForm(t, obj)
	if out := renderString(t, r, f, render.RenderOptions{}); strings.Contains(out, `name="seats"`) {
		t.Fatalf("seats should be hidden for solo plans:\n%s", out)
	}

	plan, _ := f.Field("plan")
	plan.Control().(*control.Control).Input("team")
	assertContains(t, renderString(t, r, f, render.RenderOptions{}), `<input type="number" id="profile-seats" name="seats"`)
}

func TestRenderer_MissingOptionSource(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	obj := domain.NewObject(definition.Map{
		"color": definition.NewRadio(definition.ChooseOptions{Options: definition.Options{Label: "Color"}}),
	}, nil)

	_, err = r.Render(testsupport.Context(), newForm(t, obj), render.RenderOptions{})
	if !errors.Is(err, definition.ErrNoOptionSource) {
		t.Fatalf("expected ErrNoOptionSource, got %v", err)
	}
}

func TestRenderer_TemplateOverrides(t *testing.T) {
	files := fstest.MapFS{
		"form.tpl":     {Data: []byte(`<form id="{{ view.id }}">{% for row in rows %}{{ row|safe }}{% endfor %}</form>`)},
		"row.tpl":      {Data: []byte(`{% for field in row.fields %}[{{ field.key }}]{% endfor %}`)},
		"fieldset.tpl": {Data: []byte(`({{ block.key }}:{% for row in rows %}{{ row|safe }}{% endfor %})`)},
	}
	r, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out := renderString(t, r, newForm(t, testsupport.NewPerson()), render.RenderOptions{})
	want := `<form id="profile">[name][email][role][newsletter](address:[address.street][address.city][address.country])</form>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\n got: %s", want, out)
	}

	if _, err := html.New(html.WithTemplatesDir("does-not-exist")); err == nil {
		t.Fatalf("missing templates dir should fail")
	}
}

func TestRenderer_Guards(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(testsupport.Context(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("nil form should fail")
	}

	ctx, cancel := context.WithCancel(testsupport.Context())
	cancel()
	if _, err := r.Render(ctx, newForm(t, testsupport.NewPerson()), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
