package metadata

import (
	"fmt"

	"github.com/goliatone/go-dorf/pkg/definition"
)

// Input is the metadata of a definition.Input.
type Input struct {
	*Base
	def *definition.Input
}

func NewInput(def definition.Definition, opts Options) (Field, error) {
	typed, ok := def.(*definition.Input)
	if !ok {
		return nil, mismatch(definition.TagInput, def)
	}
	base, err := NewBase(def, opts)
	if err != nil {
		return nil, err
	}
	return &Input{Base: base, def: typed}, nil
}

func (f *Input) Type() string        { return f.def.Type() }
func (f *Input) Placeholder() string { return f.def.Placeholder() }

// Checkbox is the metadata of a definition.Checkbox.
type Checkbox struct {
	*Base
}

func NewCheckbox(def definition.Definition, opts Options) (Field, error) {
	if _, ok := def.(*definition.Checkbox); !ok {
		return nil, mismatch(definition.TagCheckbox, def)
	}
	base, err := NewBase(def, opts)
	if err != nil {
		return nil, err
	}
	return &Checkbox{Base: base}, nil
}

// Checked reports whether the current value is true.
func (f *Checkbox) Checked() bool {
	checked, _ := f.Value().(bool)
	return checked
}

// Choice is implemented by fields with a bounded option set.
type Choice interface {
	Field
	Options() ([]definition.Option, error)
	Chooser() *definition.Choose
}

// Select is the metadata of a definition.Select.
type Select struct {
	*Base
	def *definition.Select
}

func NewSelect(def definition.Definition, opts Options) (Field, error) {
	typed, ok := def.(*definition.Select)
	if !ok {
		return nil, mismatch(definition.TagSelect, def)
	}
	base, err := NewBase(def, opts)
	if err != nil {
		return nil, err
	}
	return &Select{Base: base, def: typed}, nil
}

func (f *Select) Options() ([]definition.Option, error) { return f.def.OptionsToSelect() }
func (f *Select) Chooser() *definition.Choose           { return f.def.Choose }
func (f *Select) Multiple() bool                        { return f.def.Multiple() }

// Radio is the metadata of a definition.Radio.
type Radio struct {
	*Base
	def *definition.Radio
}

func NewRadio(def definition.Definition, opts Options) (Field, error) {
	typed, ok := def.(*definition.Radio)
	if !ok {
		return nil, mismatch(definition.TagRadio, def)
	}
	base, err := NewBase(def, opts)
	if err != nil {
		return nil, err
	}
	return &Radio{Base: base, def: typed}, nil
}

func (f *Radio) Options() ([]definition.Option, error) { return f.def.OptionsToSelect() }
func (f *Radio) Chooser() *definition.Choose           { return f.def.Choose }

func mismatch(tag definition.Tag, def definition.Definition) error {
	return fmt.Errorf("%w: %s factory got %T", ErrDefinitionMismatch, tag, def)
}

var (
	_ Choice = (*Select)(nil)
	_ Choice = (*Radio)(nil)
)
