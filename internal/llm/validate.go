package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema describing the reply a caller expects.
// It is read-only after compilation and safe for concurrent use.
type Schema struct {
	Name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles definition (a JSON Schema document expressed as a
// map) under the given name.
func CompileSchema(name string, definition map[string]any) (*Schema, error) {
	// The jsonschema library expects a parsed JSON value, not Go maps with
	// arbitrary element types.
	defBytes, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	return &Schema{Name: name, compiled: compiled}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for package level schema literals.
func MustCompileSchema(name string, definition map[string]any) *Schema {
	s, err := CompileSchema(name, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a value produced by encoding/json against the schema.
func (s *Schema) Validate(doc any) error {
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema %q: %w", s.Name, err)
	}
	return nil
}
