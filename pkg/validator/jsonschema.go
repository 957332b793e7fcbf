package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const inlineSchemaURL = "dorf://validator/schema.json"

// JSONSchema compiles raw (a JSON Schema document) into a validator. Values
// are normalised through JSON before validation so Go structs and maps are
// checked the same way. Failures are reported under KindSchema as a list of
// messages.
func JSONSchema(raw []byte) (Func, error) {
	schema, err := CompileSchema(raw)
	if err != nil {
		return nil, err
	}
	return func(value any) Errors {
		if value == nil {
			return nil
		}
		normalised, err := normaliseJSON(value)
		if err != nil {
			return Errors{KindSchema: []string{err.Error()}}
		}
		if err := schema.Validate(normalised); err != nil {
			return Errors{KindSchema: SchemaMessages(err)}
		}
		return nil
	}, nil
}

// CompileSchema compiles a standalone JSON Schema document. External
// references are rejected.
func CompileSchema(raw []byte) (*jsonschema.Schema, error) {
	if len(raw) == 0 {
		return nil, errors.New("validator: schema is empty")
	}
	payload := string(raw)
	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		if url == inlineSchemaURL {
			return io.NopCloser(strings.NewReader(payload)), nil
		}
		return nil, fmt.Errorf("validator: external schema reference not supported: %s", url)
	}
	schema, err := compiler.Compile(inlineSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("validator: compile schema: %w", err)
	}
	return schema, nil
}

// SchemaMessages flattens a jsonschema validation error into leaf messages
// prefixed with the instance location.
func SchemaMessages(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "/"
			}
			out = append(out, location+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return out
}

func normaliseJSON(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("validator: encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("validator: decode value: %w", err)
	}
	return out, nil
}
