package planlib

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchema converts the tool's parameters to a JSON Schema object. The
// result is accepted as-is by the OpenAI and Anthropic function definitions.
func (s *ToolSpec) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Parameters))
	for name, p := range s.Parameters {
		props[name] = p.JSONSchema()
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

// JSONSchema converts the parameter to a JSON Schema map.
func (p *Parameter) JSONSchema() map[string]any {
	schema := map[string]any{
		"type": string(p.Type),
	}

	if p.Title != "" {
		schema["title"] = p.Title
	}
	if p.Description != "" {
		schema["description"] = p.Description
	}

	if p.Type == TypeObject && p.Properties != nil {
		props := make(map[string]any, len(p.Properties))
		for name, prop := range p.Properties {
			props[name] = prop.JSONSchema()
		}
		schema["properties"] = props
		if len(p.Required) > 0 {
			schema["required"] = p.Required
		}
	}

	if p.Type == TypeArray && p.Items != nil {
		schema["items"] = p.Items.JSONSchema()
	}

	if len(p.Enum) > 0 {
		schema["enum"] = p.Enum
	}
	if p.Minimum != nil {
		schema["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		schema["maximum"] = *p.Maximum
	}
	if p.Pattern != "" {
		schema["pattern"] = p.Pattern
	}

	return schema
}

// CompileSchema compiles a JSON Schema document given as a Go map or raw
// JSON bytes. name is used as the resource location in error messages.
func CompileSchema(name string, doc any) (*jsonschema.Schema, error) {
	raw, ok := doc.([]byte)
	if !ok {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal schema", goerr.V("name", name))
		}
		raw = b
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse schema", goerr.V("name", name))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to add schema resource", goerr.V("name", name))
	}

	schema, err := c.Compile(name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile schema", goerr.V("name", name))
	}
	return schema, nil
}

// ValidateJSON validates a Go value against schema. The value is
// round-tripped through JSON so that typed maps and structs validate the
// same way as decoded LLM output.
func ValidateJSON(schema *jsonschema.Schema, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal value")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return goerr.Wrap(err, "failed to parse value")
	}

	if err := schema.Validate(inst); err != nil {
		return goerr.Wrap(err, "schema validation failed")
	}
	return nil
}
