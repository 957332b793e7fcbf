package config_test

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-dorf/pkg/config"
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/form"
)

const yamlConfig = `
columns: 3
debounce: 250
renderer: tui
theme:
  name: acme
  variant: dark
  tokens:
    dorf.general.label: acme-label
  variants:
    dark:
      dorf.general.label: acme-dark-label
css:
  general:
    error: text-red
  select:
    field: acme-select
  form:
    buttons:
      save: btn-primary
`

const tomlConfig = `
columns = 3
debounce = "250ms"
renderer = "tui"

[theme]
name = "acme"
variant = "dark"

[theme.tokens]
"dorf.general.label" = "acme-label"

[theme.variants.dark]
"dorf.general.label" = "acme-dark-label"

[css.general]
error = "text-red"

[css.select]
field = "acme-select"

[css.form.buttons]
save = "btn-primary"
`

const jsonConfig = `{
  "columns": 3,
  "debounce": "0.25s",
  "renderer": "tui",
  "theme": {
    "name": "acme",
    "variant": "dark",
    "tokens": {"dorf.general.label": "acme-label"},
    "variants": {"dark": {"dorf.general.label": "acme-dark-label"}}
  },
  "css": {
    "general": {"error": "text-red"},
    "select": {"field": "acme-select"},
    "form": {"buttons": {"save": "btn-primary"}}
  }
}`

func TestLoadFS_AllFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"dorf.yaml": {Data: []byte(yamlConfig)},
		"dorf.toml": {Data: []byte(tomlConfig)},
		"dorf.json": {Data: []byte(jsonConfig)},
	}
	for _, name := range []string{"dorf.yaml", "dorf.toml", "dorf.json"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.LoadFS(fsys, name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Columns != 3 || cfg.RendererName() != "tui" {
				t.Fatalf("unexpected scalars: %+v", cfg)
			}
			debounce, err := cfg.DebounceDuration()
			if err != nil || debounce != 250*time.Millisecond {
				t.Fatalf("debounce: %v %v", debounce, err)
			}

			resolved := cfg.ResolvedCSS()
			if resolved.General.Label != "acme-dark-label" {
				t.Fatalf("theme variant should drive the label class, got %q", resolved.General.Label)
			}
			if resolved.General.Error != "text-red" {
				t.Fatalf("css section should override defaults, got %q", resolved.General.Error)
			}
			if resolved.General.Field != string(css.ClassControl) {
				t.Fatalf("defaults should fill unset slots, got %q", resolved.General.Field)
			}
			if resolved.Kind("select").Field != "acme-select" {
				t.Fatalf("kind override missing: %+v", resolved.Kinds["select"])
			}
			if resolved.Form.Buttons.Save != "btn-primary" || resolved.Form.Buttons.Reset != string(css.ClassReset) {
				t.Fatalf("form buttons not merged: %+v", resolved.Form.Buttons)
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte("{}"), config.FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Columns != 2 || cfg.RendererName() != config.DefaultRenderer || cfg.ThemeSelection() != nil {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.FormOptions()) != 1 {
		t.Fatalf("expected columns form option")
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		data   string
		format config.Format
	}{
		"negative columns":   {data: "columns: -1", format: config.FormatYAML},
		"bad debounce":       {data: `debounce = "soon"`, format: config.FormatTOML},
		"variant w/o theme":  {data: `{"theme": {"variant": "dark"}}`, format: config.FormatJSON},
		"unknown json field": {data: `{"colums": 2}`, format: config.FormatJSON},
		"unknown format":     {data: "", format: "ini"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(tc.data), tc.format); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := config.FormatFromPath("dorf.ini"); !errors.Is(err, config.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestApply(t *testing.T) {
	defer form.SetFormsDisabled(false)
	config.Config{FormsDisabled: true}.Apply()
	if !form.FormsDisabled() {
		t.Fatalf("Apply should install the disabled policy")
	}
}
