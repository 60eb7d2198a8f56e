package planlib

import (
	"context"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ToolSpec is the specification of a tool exposed to an Agent.
type ToolSpec struct {
	// Name is the unique identifier of the tool within one executor.
	Name string

	// Description is shown to the LLM to explain what the tool does.
	Description string

	// Parameters defines the input parameters that the tool accepts.
	Parameters map[string]*Parameter

	// Required is the list of required parameter names.
	Required []string
}

// Validate validates the tool specification.
func (s *ToolSpec) Validate() error {
	eb := goerr.NewBuilder(goerr.V("tool", s.Name))
	if s.Name == "" {
		return eb.Wrap(ErrInvalidTool, "name is required")
	}

	for name, param := range s.Parameters {
		if err := param.Validate(); err != nil {
			return eb.Wrap(ErrInvalidTool, "invalid parameter", goerr.V("parameter", name))
		}
	}

	for _, req := range s.Required {
		if _, ok := s.Parameters[req]; !ok {
			return eb.Wrap(ErrInvalidTool, "required parameter not found", goerr.V("parameter", req))
		}
	}

	return nil
}

// ParameterType is the JSON type of a parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Parameter is a parameter of a tool.
type Parameter struct {
	Title       string
	Type        ParameterType
	Description string

	// Required lists required field names when Type is TypeObject.
	Required []string

	// Enum restricts the allowed values.
	Enum []string

	// Properties describes the fields of an object parameter.
	Properties map[string]*Parameter

	// Items describes the elements of an array parameter.
	Items *Parameter

	Minimum *float64
	Maximum *float64
	Pattern string
}

// Validate validates the parameter.
func (p *Parameter) Validate() error {
	eb := goerr.NewBuilder(goerr.V("parameter", p.Title))

	if p.Type == "" {
		return eb.Wrap(ErrInvalidParameter, "type is required")
	}

	switch p.Type {
	case TypeObject:
		if p.Properties == nil {
			return eb.Wrap(ErrInvalidParameter, "properties is required for object type")
		}
		for _, prop := range p.Properties {
			if err := prop.Validate(); err != nil {
				return eb.Wrap(ErrInvalidParameter, "invalid property")
			}
		}
		for _, req := range p.Required {
			if _, ok := p.Properties[req]; !ok {
				return eb.Wrap(ErrInvalidParameter, "required field not found in properties", goerr.V("field", req))
			}
		}

	case TypeArray:
		if p.Items == nil {
			return eb.Wrap(ErrInvalidParameter, "items is required for array type")
		}
		if err := p.Items.Validate(); err != nil {
			return eb.Wrap(ErrInvalidParameter, "invalid items")
		}

	case TypeNumber, TypeInteger:
		if p.Minimum != nil && p.Maximum != nil && *p.Minimum > *p.Maximum {
			return eb.Wrap(ErrInvalidParameter, "minimum must be less than or equal to maximum")
		}

	case TypeString:
		if p.Pattern != "" {
			if _, err := regexp.Compile(p.Pattern); err != nil {
				return eb.Wrap(ErrInvalidParameter, "invalid pattern", goerr.V("pattern", p.Pattern))
			}
		}

	case TypeBoolean:

	default:
		return eb.Wrap(ErrInvalidParameter, "unknown type", goerr.V("type", p.Type))
	}

	return nil
}

// Tool is a named, executable action.
type Tool interface {
	Spec() ToolSpec

	// Run executes the tool. A returned error does not abort the strategy;
	// ToolExecutor turns it into an observation.
	Run(ctx context.Context, args map[string]any) (any, error)
}

// ToolSet is a group of tools served by one backend, e.g. an MCP server.
type ToolSet interface {
	Specs(ctx context.Context) ([]ToolSpec, error)
	Run(ctx context.Context, name string, args map[string]any) (any, error)
}

// ToolFunc builds a Tool from a spec and a function.
func ToolFunc(spec ToolSpec, run func(ctx context.Context, args map[string]any) (any, error)) Tool {
	return &funcTool{spec: spec, run: run}
}

type funcTool struct {
	spec ToolSpec
	run  func(ctx context.Context, args map[string]any) (any, error)
}

func (x *funcTool) Spec() ToolSpec { return x.spec }

func (x *funcTool) Run(ctx context.Context, args map[string]any) (any, error) {
	return x.run(ctx, args)
}
