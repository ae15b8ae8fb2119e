// ABOUTME: JSON Schema compilation and argument validation for tool inputs.
// ABOUTME: Validation failures wrap ErrInvalidArguments and never reach the handler.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaURLPrefix is the in-memory base URL of compiled tool schemas.
const schemaURLPrefix = "mem:///tools/"

// compileSchema compiles a tool's input schema. An empty schema compiles
// to nil, meaning arguments are not validated.
func compileSchema(toolName, schema string) (*jsonschema.Schema, error) {
	if schema == "" {
		return nil, nil
	}

	schemaObj, err := jsonschema.UnmarshalJSON(strings.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("tool %q: invalid input schema: %w", toolName, err)
	}

	url := schemaURLPrefix + toolName + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, schemaObj); err != nil {
		return nil, fmt.Errorf("tool %q: schema resource: %w", toolName, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("tool %q: schema compile: %w", toolName, err)
	}
	return sch, nil
}

// validateArgs rejects arguments that do not satisfy sch before next runs.
func validateArgs(sch *jsonschema.Schema, next Handler) Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		// Round-trip through JSON so Go-typed values (ints, structs)
		// validate the same way as values decoded off the wire.
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		if err := sch.Validate(doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return next(ctx, args)
	}
}
