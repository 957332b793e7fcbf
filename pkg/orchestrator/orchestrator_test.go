package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/config"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/openapi"
	"github.com/goliatone/go-dorf/pkg/orchestrator"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/testsupport"
)

const signupDocument = `
title: Signup
columns: 1
css:
  general:
    wrapper: signup-field
fields:
  name:
    tag: input
    label: Name
    order: 0
    required: true
  plan:
    tag: radio
    label: Plan
    order: 1
    options:
      - key: free
        value: Free
      - key: pro
        value: Pro
    value: free
  address:
    tag: nested-object
    label: Address
    order: 2
    fields:
      city:
        tag: input
        label: City
      zip:
        tag: input
        label: ZIP
`

const accountsSpec = `
openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths:
  /accounts:
    post:
      operationId: createAccount
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Account'
      responses:
        '201':
          description: created
components:
  schemas:
    Account:
      type: object
      required: [email]
      properties:
        email:
          type: string
          format: email
        newsletter:
          type: boolean
`

func sources() fstest.MapFS {
	return fstest.MapFS{
		"signup.yaml":   {Data: []byte(signupDocument)},
		"accounts.yaml": {Data: []byte(accountsSpec)},
	}
}

// capture reports what the orchestrator handed to the renderer.
type capture struct {
	name string
}

type captured struct {
	Form   string         `json:"form"`
	Title  string         `json:"title"`
	Label  string         `json:"label"`
	Keys   []string       `json:"keys"`
	Values map[string]any `json:"values"`
}

func (c capture) Name() string        { return c.name }
func (c capture) ContentType() string { return "application/json" }

func (c capture) Render(_ context.Context, f *form.Form, opts render.RenderOptions) ([]byte, error) {
	out := captured{Form: f.ID(), Title: opts.Title, Values: f.Values()}
	if opts.CSS != nil {
		out.Label = opts.CSS.General.Label
	}
	for _, field := range f.Fields() {
		out.Keys = append(out.Keys, field.Key())
	}
	return json.Marshal(out)
}

func captureRegistry(t *testing.T, names ...string) *render.Registry {
	t.Helper()
	registry, err := render.NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for _, name := range names {
		registry.MustRegister(capture{name: name})
	}
	return registry
}

func decode(t *testing.T, output []byte) captured {
	t.Helper()
	var out captured
	if err := json.Unmarshal(output, &out); err != nil {
		t.Fatalf("decode output %s: %v", output, err)
	}
	return out
}

func TestGenerate_DocumentHTML(t *testing.T) {
	cfg := config.Default()
	cfg.CSS = css.Config{General: css.Classes{Label: "form-label"}}

	gen := orchestrator.New(
		orchestrator.WithConfig(cfg),
		orchestrator.WithFormOptions(form.WithID("signup")),
	)
	output, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		FS:           sources(),
		DocumentPath: "signup.yaml",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	html := string(output)
	for _, fragment := range []string{
		`<form id="signup"`,
		`<h2>Signup</h2>`,
		`<div class="signup-field" data-key="name" data-tag="input">`,
		`<label for="signup-name" class="form-label">Name *</label>`,
		`<input type="radio" name="plan" value="free" class="dorf-radio" checked>`,
		`<fieldset id="signup-address"`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, html)
		}
	}
}

func TestGenerate_OpenAPIOperation(t *testing.T) {
	gen := orchestrator.New(
		orchestrator.WithRegistry(captureRegistry(t, "capture")),
		orchestrator.WithDefaultRenderer("capture"),
	)
	output, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		FS:          sources(),
		SpecPath:    "accounts.yaml",
		OperationID: "createAccount",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := decode(t, output)
	if got.Title != "Accounts" {
		t.Fatalf("title should default to the api title, got %q", got.Title)
	}
	if got.Label != string(css.ClassLabel) {
		t.Fatalf("css should default to the resolved cascade, got %q", got.Label)
	}
	if diff := cmp.Diff([]string{"email", "newsletter"}, got.Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_RemoteOpenAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(accountsSpec))
	}))
	defer srv.Close()

	gen := orchestrator.New(
		orchestrator.WithImporter(openapi.New(openapi.WithHTTPClient(srv.Client()))),
		orchestrator.WithRegistry(captureRegistry(t, "capture")),
	)
	output, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		SpecPath:  srv.URL + "/accounts.yaml",
		Component: "Account",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"email", "newsletter"}, decode(t, output).Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_PresetTransformer(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformerFromFS(fstest.MapFS{
		"preset.yaml": {Data: []byte(`
values:
  name: Grace
  address:
    city: Paris
order:
  plan: -1
`)},
	}, "preset.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	gen := orchestrator.New(
		orchestrator.WithRegistry(captureRegistry(t, "capture")),
		orchestrator.WithTransformer(preset),
	)
	output, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		FS:            sources(),
		DocumentPath:  "signup.yaml",
		RenderOptions: render.RenderOptions{Title: "Custom"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := decode(t, output)
	if got.Title != "Custom" {
		t.Fatalf("explicit title should win, got %q", got.Title)
	}
	if diff := cmp.Diff([]string{"plan", "name", "address"}, got.Keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if got.Values["name"] != "Grace" {
		t.Fatalf("preset value not applied: %v", got.Values)
	}
	address, _ := got.Values["address"].(map[string]any)
	if address["city"] != "Paris" {
		t.Fatalf("nested preset value not applied: %v", got.Values)
	}
}

func TestPresetTransformer_Errors(t *testing.T) {
	if _, err := orchestrator.NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("empty preset should fail")
	}

	cases := map[string]string{
		"unknown field":   "values:\n  missing: 1\n",
		"not nested":      "values:\n  name:\n    first: Ada\n",
		"unknown order":   "order:\n  address.country: 1\n",
		"order on scalar": "order:\n  name.first: 1\n",
	}
	for name, preset := range cases {
		t.Run(name, func(t *testing.T) {
			transformer, err := orchestrator.NewPresetTransformer([]byte(preset))
			if err != nil {
				t.Fatalf("parse preset: %v", err)
			}
			gen := orchestrator.New(
				orchestrator.WithRegistry(captureRegistry(t, "capture")),
				orchestrator.WithTransformer(transformer),
			)
			_, err = gen.Generate(testsupport.Context(), orchestrator.Request{FS: sources(), DocumentPath: "signup.yaml"})
			if err == nil || !strings.Contains(err.Error(), "preset transformer") {
				t.Fatalf("expected preset transformer error, got %v", err)
			}
		})
	}
}

func TestGenerate_RendererSelection(t *testing.T) {
	gen := orchestrator.New(
		orchestrator.WithRegistry(captureRegistry(t, "beta", "alpha")),
		orchestrator.WithDefaultRenderer("missing"),
	)
	req := orchestrator.Request{FS: sources(), DocumentPath: "signup.yaml"}

	if _, err := gen.Generate(testsupport.Context(), req); err != nil {
		t.Fatalf("unknown default renderer should fall back: %v", err)
	}

	req.Renderer = "missing"
	_, err := gen.Generate(testsupport.Context(), req)
	if !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestForm_BuildsWithoutRendering(t *testing.T) {
	submitted := false
	gen := orchestrator.New(orchestrator.WithHandler(form.HandlerFuncs{
		Submit: func(context.Context, *form.Form) error {
			submitted = true
			return nil
		},
	}))
	f, err := gen.Form(testsupport.Context(), orchestrator.Request{FS: sources(), SpecPath: "accounts.yaml", Component: "Account"})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	defer f.Close()

	if err := f.Submit(testsupport.Context()); !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("missing required email should be invalid, got %v", err)
	}
	if submitted {
		t.Fatalf("invalid form should not reach the handler")
	}
}

func TestGenerate_Guards(t *testing.T) {
	gen := orchestrator.New()
	ctx := testsupport.Context()

	if _, err := gen.Generate(ctx, orchestrator.Request{}); !errors.Is(err, orchestrator.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if _, err := gen.Generate(ctx, orchestrator.Request{FS: sources(), SpecPath: "accounts.yaml"}); err == nil {
		t.Fatalf("openapi source without a schema selector should fail")
	}
	if _, err := gen.Generate(ctx, orchestrator.Request{FS: sources(), SpecPath: "accounts.yaml", Component: "Missing"}); err == nil {
		t.Fatalf("unknown component should fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := gen.Generate(cancelled, orchestrator.Request{FS: sources(), DocumentPath: "signup.yaml"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	broken := orchestrator.New(orchestrator.WithConfig(config.Config{Columns: -1}))
	if _, err := broken.Generate(ctx, orchestrator.Request{FS: sources(), DocumentPath: "signup.yaml"}); err == nil {
		t.Fatalf("invalid configuration should surface")
	}
}
