package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidToolArguments is returned when model-supplied arguments fail
// schema validation.
var ErrInvalidToolArguments = errors.New("invalid tool arguments")

// Tool is a named, schema-typed operation the model may invoke during
// generation.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the tool's input. It is sent to the
	// model for tool selection and used to validate the arguments the model
	// supplies.
	Parameters *jsonschema.Schema

	execute func(context.Context, string) (string, error)
}

// NewTool creates a tool whose input schema is reflected from the parameters
// type T. Arguments are validated against that schema before the execute
// function runs; a validation failure never reaches execute.
func NewTool[T any](name, description string, execute func(context.Context, T) (string, error)) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var zero T
	schema := reflector.Reflect(&zero)
	schema.Version = ""

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
		execute: func(ctx context.Context, arguments string) (string, error) {
			if strings.TrimSpace(arguments) == "" {
				arguments = "{}"
			}

			if err := validateArguments(schema, arguments); err != nil {
				return "", err
			}

			var parameters T
			if err := json.Unmarshal([]byte(arguments), &parameters); err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
			}

			return execute(ctx, parameters)
		},
	}
}

// Execute validates the arguments and runs the tool.
func (t Tool) Execute(ctx context.Context, arguments string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no execute function", t.Name)
	}

	return t.execute(ctx, arguments)
}

func validateArguments(schema *jsonschema.Schema, arguments string) error {
	schemaBytes, err := schema.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal tool schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewStringLoader(arguments),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, problem := range result.Errors() {
			problems = append(problems, problem.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidToolArguments, strings.Join(problems, "; "))
	}

	return nil
}
