package testsupport

import (
	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/validator"
)

// CountryOptions are the static options of Address.Country.
var CountryOptions = []definition.Option{
	{Key: "fr", Value: "France"},
	{Key: "uk", Value: "United Kingdom"},
}

// RoleOptions are the static options of Person.Role.
var RoleOptions = []definition.Option{
	{Key: "admin", Value: "Administrator"},
	{Key: "editor", Value: "Editor"},
}

// Address is a nested domain object fixture.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (*Address) FieldDefinitions() definition.Map {
	return definition.Map{
		"street": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:               "Street",
				Validators:          []validator.Func{validator.Required()},
				ErrorMessage:        "Street is required",
				UpdateModelOnChange: true,
				Order:               definition.Ordered(1),
			},
		}),
		"city": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:               "City",
				UpdateModelOnChange: true,
				Order:               definition.Ordered(2),
			},
		}),
		"country": definition.NewSelect(definition.SelectOptions{
			ChooseOptions: definition.ChooseOptions{
				Options: definition.Options{
					Label:               "Country",
					UpdateModelOnChange: true,
					Order:               definition.Ordered(3),
				},
				OptionsToSelect: CountryOptions,
			},
		}),
	}
}

// Person is the top-level domain object fixture. TransparentAddress selects
// the flow of the nested address.
type Person struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	Newsletter         bool     `json:"newsletter"`
	Address            *Address `json:"address"`
	TransparentAddress bool     `json:"-"`
}

func (p *Person) FieldDefinitions() definition.Map {
	return definition.Map{
		"name": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:               "Name",
				Validators:          []validator.Func{validator.Required(), validator.MaxLength(40)},
				ErrorMessage:        "Name is required",
				UpdateModelOnChange: true,
				Order:               definition.Ordered(1),
				CSS:                 css.Classes{Wrapper: "person-name"},
			},
			Placeholder: "Ada Lovelace",
		}),
		"email": definition.NewInput(definition.InputOptions{
			Options: definition.Options{
				Label:               "Email",
				Validators:          []validator.Func{validator.Required(), validator.Email()},
				ErrorMessage:        "A valid email is required",
				UpdateModelOnChange: true,
				Order:               definition.Ordered(2),
				Extras:              map[string]any{"help": "We never share it."},
			},
			Type: "email",
		}),
		"role": definition.NewRadio(definition.ChooseOptions{
			Options: definition.Options{
				Label:               "Role",
				UpdateModelOnChange: true,
				Order:               definition.Ordered(3),
			},
			OptionsToSelect: RoleOptions,
		}),
		"newsletter": definition.NewCheckbox(definition.Options{
			Label:               "Newsletter",
			UpdateModelOnChange: true,
			Order:               definition.Ordered(4),
		}),
		"address": definition.NewNested(definition.NestedOptions{
			Options: definition.Options{
				Label: "Address",
				Order: definition.Ordered(5),
			},
			Columns:         2,
			TransparentFlow: p != nil && p.TransparentAddress,
		}),
	}
}

// NewPerson returns a valid person.
func NewPerson() *Person {
	return &Person{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Role:       "admin",
		Newsletter: true,
		Address: &Address{
			Street:  "12 St James's Square",
			City:    "London",
			Country: "uk",
		},
	}
}
