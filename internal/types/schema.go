package types

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

// JSONSchemaExtend allows a null session prompt, which signals "commands only"
func (ParsedInput) JSONSchemaExtend(s *jsonschema.Schema) {
	if s.Properties == nil {
		return
	}
	if prop, ok := s.Properties.Get("sessionPrompt"); ok && prop != nil {
		prop.Type = ""
		prop.AnyOf = []*jsonschema.Schema{
			{Type: "string"},
			{Type: "null"},
		}
	}
}

var (
	statusSchema    = sync.OnceValue(func() json.RawMessage { return reflectSchema(&StatusReport{}) })
	executionSchema = sync.OnceValue(func() json.RawMessage { return reflectSchema(&ExecutionResult{}) })
	parsedSchema    = sync.OnceValue(func() json.RawMessage { return reflectSchema(&ParsedInput{}) })
)

// StatusReportSchema returns the JSON schema for StatusReport
func StatusReportSchema() json.RawMessage {
	return statusSchema()
}

// ExecutionResultSchema returns the JSON schema for ExecutionResult
func ExecutionResultSchema() json.RawMessage {
	return executionSchema()
}

// ParsedInputSchema returns the JSON schema for ParsedInput
func ParsedInputSchema() json.RawMessage {
	return parsedSchema()
}

// reflectSchema builds a self-contained schema (no $ref, $id or $schema) for v
func reflectSchema(v any) json.RawMessage {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		// Only reachable if a type above stops being marshalable.
		panic("types: cannot marshal schema: " + err.Error())
	}
	return data
}
