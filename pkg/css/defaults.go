package css

// Class is a typed identifier for the default semantic class names.
type Class string

const (
	ClassForm      Class = "dorf-form"
	ClassFieldset  Class = "dorf-fieldset"
	ClassRow       Class = "dorf-row"
	ClassWrapper   Class = "dorf-field"
	ClassLabel     Class = "dorf-label"
	ClassControl   Class = "dorf-control"
	ClassError     Class = "dorf-error"
	ClassActions   Class = "dorf-actions"
	ClassSave      Class = "dorf-save"
	ClassReset     Class = "dorf-reset"
	ClassCheckbox  Class = "dorf-checkbox"
	ClassRadio     Class = "dorf-radio"
	ClassSelect    Class = "dorf-select"
	ClassNested    Class = "dorf-nested"
	ClassHTMLField Class = "dorf-html"
)

// Defaults returns the built-in cascade used when no configuration is
// supplied.
func Defaults() Config {
	return Config{
		General: Classes{
			Label:     string(ClassLabel),
			Wrapper:   string(ClassWrapper),
			Group:     string(ClassRow),
			Error:     string(ClassError),
			Field:     string(ClassControl),
			HTMLField: string(ClassHTMLField),
		},
		Kinds: map[string]Classes{
			"checkbox":      {Field: string(ClassCheckbox)},
			"radio":         {Field: string(ClassRadio)},
			"select":        {Field: string(ClassSelect)},
			"nested-object": {Wrapper: string(ClassNested)},
		},
		Form: FormClasses{
			Form:     string(ClassForm),
			Fieldset: string(ClassFieldset),
			Buttons: Buttons{
				Save:  string(ClassSave),
				Reset: string(ClassReset),
				Group: string(ClassActions),
			},
		},
	}
}
