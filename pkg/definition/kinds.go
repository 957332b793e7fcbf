package definition

// InputOptions configures a text-like input.
type InputOptions struct {
	Options
	// Type is the HTML input type. Defaults to "text".
	Type        string
	Placeholder string
}

// Input is a free-form value field.
type Input struct {
	Base
	inputType   string
	placeholder string
}

func NewInput(opts InputOptions) *Input {
	inputType := opts.Type
	if inputType == "" {
		inputType = "text"
	}
	return &Input{
		Base:        NewBase(opts.Options),
		inputType:   inputType,
		placeholder: opts.Placeholder,
	}
}

func (*Input) Tag() Tag { return TagInput }

func (d *Input) Type() string {
	return d.inputType
}

func (d *Input) Placeholder() string {
	return d.placeholder
}

// Checkbox is a boolean field.
type Checkbox struct {
	Base
}

func NewCheckbox(opts Options) *Checkbox {
	return &Checkbox{Base: NewBase(opts)}
}

func (*Checkbox) Tag() Tag { return TagCheckbox }

// SelectOptions configures a select field.
type SelectOptions struct {
	ChooseOptions
	Multiple bool
}

// Select picks one (or, with Multiple, several) of a bounded option set.
type Select struct {
	*Choose
	multiple bool
}

func NewSelect(opts SelectOptions) *Select {
	return &Select{Choose: NewChoose(opts.ChooseOptions), multiple: opts.Multiple}
}

func (*Select) Tag() Tag { return TagSelect }

func (d *Select) Multiple() bool {
	return d.multiple
}

// Radio picks exactly one of a bounded option set.
type Radio struct {
	*Choose
}

func NewRadio(opts ChooseOptions) *Radio {
	return &Radio{Choose: NewChoose(opts)}
}

func (*Radio) Tag() Tag { return TagRadio }

// DefaultColumns is the column count of nested groups that do not set one.
const DefaultColumns = 2

// NestedOptions configures a nested object field.
type NestedOptions struct {
	Options
	Columns int
	// TransparentFlow splices the nested fields into the surrounding grid
	// instead of rendering them as a separate block.
	TransparentFlow bool
}

// Nested wraps a property whose value is itself a DomainObject.
type Nested struct {
	Base
	columns         int
	transparentFlow bool
}

func NewNested(opts NestedOptions) *Nested {
	columns := opts.Columns
	if columns < 1 {
		columns = DefaultColumns
	}
	return &Nested{
		Base:            NewBase(opts.Options),
		columns:         columns,
		transparentFlow: opts.TransparentFlow,
	}
}

func (*Nested) Tag() Tag { return TagNested }

func (d *Nested) Columns() int {
	return d.columns
}

func (d *Nested) TransparentFlow() bool {
	return d.transparentFlow
}
