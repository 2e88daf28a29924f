package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := CompileSchema("test-object", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "minLength": 1},
			"age":   map[string]any{"type": "integer", "minimum": 0, "maximum": 120},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
		},
		"required": []any{"name", "age"},
	})
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestSchema_Validate(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"valid without optional", `{"name":"Bob","age":8}`, false},
		{"missing required", `{"name":"Charlie"}`, true},
		{"wrong type", `{"name":"Dave","age":"ten"}`, true},
		{"fractional integer", `{"name":"Dave","age":10.5}`, true},
		{"out of range", `{"name":"Eve","age":150}`, true},
		{"invalid enum", `{"name":"Eve","age":9,"grade":"D"}`, true},
		{"empty string", `{"name":"","age":9}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(decode(t, tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompileSchema_InvalidDefinition(t *testing.T) {
	_, err := CompileSchema("broken", map[string]any{"type": 42})
	assert.Error(t, err)
}

func TestMustCompileSchema_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompileSchema("broken", map[string]any{"type": 42})
	})
}
