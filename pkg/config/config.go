// Package config loads go-dorf settings from YAML, JSON or TOML files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/form"
)

// Format names a configuration encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// DefaultRenderer is used when Config.Renderer is empty.
const DefaultRenderer = "html"

// ErrUnknownFormat is returned for unsupported file extensions.
var ErrUnknownFormat = errors.New("config: unknown format")

// Theme selects go-theme tokens. Tokens of the active variant override the
// base tokens.
type Theme struct {
	Name     string                       `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Variant  string                       `json:"variant,omitempty" yaml:"variant,omitempty" toml:"variant,omitempty"`
	Tokens   map[string]string            `json:"tokens,omitempty" yaml:"tokens,omitempty" toml:"tokens,omitempty"`
	Variants map[string]map[string]string `json:"variants,omitempty" yaml:"variants,omitempty" toml:"variants,omitempty"`
}

// Config holds the settings shared by the CLI and embedding applications.
type Config struct {
	Columns       int        `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`
	FormsDisabled bool       `json:"formsDisabled,omitempty" yaml:"formsDisabled,omitempty" toml:"formsDisabled,omitempty"`
	Debounce      string     `json:"debounce,omitempty" yaml:"debounce,omitempty" toml:"debounce,omitempty"`
	Renderer      string     `json:"renderer,omitempty" yaml:"renderer,omitempty" toml:"renderer,omitempty"`
	Theme         Theme      `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	CSS           css.Config `json:"css,omitempty" yaml:"css,omitempty" toml:"css,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Columns:  definition.DefaultColumns,
		Renderer: DefaultRenderer,
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data, format)
}

// LoadFS reads and parses path from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	if fsys == nil {
		return Config{}, fmt.Errorf("config: fs is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data, format)
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(&cfg)
	case FormatTOML:
		_, err = toml.Decode(string(data), &cfg)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Columns < 0 {
		return fmt.Errorf("config: columns must be positive, got %d", c.Columns)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	if c.Theme.Variant != "" && c.Theme.Name == "" {
		return fmt.Errorf("config: theme variant %q requires a theme name", c.Theme.Variant)
	}
	return nil
}

// DebounceDuration parses Debounce. Plain integers are milliseconds.
func (c Config) DebounceDuration() (time.Duration, error) {
	raw := strings.TrimSpace(c.Debounce)
	if raw == "" {
		return 0, nil
	}
	if strings.Trim(raw, "0123456789") == "" {
		raw += "ms"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: debounce must not be negative, got %s", d)
	}
	return d, nil
}

// ThemeSelection builds a go-theme selection from Theme, or nil when no
// theme is configured.
func (c Config) ThemeSelection() *theme.Selection {
	if c.Theme.Name == "" {
		return nil
	}
	manifest := &theme.Manifest{
		Name:   c.Theme.Name,
		Tokens: c.Theme.Tokens,
	}
	if len(c.Theme.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(c.Theme.Variants))
		for name, tokens := range c.Theme.Variants {
			manifest.Variants[name] = theme.Variant{Tokens: tokens}
		}
	}
	return &theme.Selection{
		Theme:    c.Theme.Name,
		Variant:  c.Theme.Variant,
		Manifest: manifest,
	}
}

// ResolvedCSS layers the built-in defaults, the theme tokens and the css
// section, in that order.
func (c Config) ResolvedCSS() css.Config {
	return css.Defaults().
		Overlay(css.FromTheme(c.ThemeSelection())).
		Overlay(c.CSS)
}

// RendererName returns Renderer or DefaultRenderer.
func (c Config) RendererName() string {
	if c.Renderer == "" {
		return DefaultRenderer
	}
	return c.Renderer
}

// FormOptions returns the form options derived from the configuration.
func (c Config) FormOptions() []form.Option {
	var opts []form.Option
	if c.Columns > 0 {
		opts = append(opts, form.WithColumns(c.Columns))
	}
	return opts
}

// Apply installs the process-wide settings.
func (c Config) Apply() {
	form.SetFormsDisabled(c.FormsDisabled)
}
