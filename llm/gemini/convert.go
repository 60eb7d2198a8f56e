package gemini

import (
	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

func convertTools(specs []planlib.ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, len(specs))
	for i, spec := range specs {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(spec.Parameters)),
			Required:   spec.Required,
		}
		for name, p := range spec.Parameters {
			params.Properties[name] = convertParameter(p)
		}

		decls[i] = &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  params,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertParameter(p *planlib.Parameter) *genai.Schema {
	schema := &genai.Schema{
		Type:        convertType(p.Type),
		Description: p.Description,
		Enum:        p.Enum,
	}

	if p.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema, len(p.Properties))
		for name, prop := range p.Properties {
			schema.Properties[name] = convertParameter(prop)
		}
		schema.Required = p.Required
	}
	if p.Items != nil {
		schema.Items = convertParameter(p.Items)
	}
	return schema
}

func convertType(t planlib.ParameterType) genai.Type {
	switch t {
	case planlib.TypeString:
		return genai.TypeString
	case planlib.TypeNumber:
		return genai.TypeNumber
	case planlib.TypeInteger:
		return genai.TypeInteger
	case planlib.TypeBoolean:
		return genai.TypeBoolean
	case planlib.TypeArray:
		return genai.TypeArray
	case planlib.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func convertInputs(inputs []planlib.Input) ([]genai.Part, error) {
	parts := make([]genai.Part, 0, len(inputs))
	for _, in := range inputs {
		switch v := in.(type) {
		case planlib.Text:
			parts = append(parts, genai.Text(string(v)))

		case planlib.FunctionResponse:
			data := v.Data
			if v.Error != nil {
				data = map[string]any{"error": v.Error.Error()}
			}
			parts = append(parts, genai.FunctionResponse{Name: v.Name, Response: data})

		default:
			return nil, goerr.Wrap(planlib.ErrInvalidParameter, "unsupported input", goerr.V("input", in))
		}
	}
	return parts, nil
}

// convertResponse reads the first candidate. Gemini function calls carry no
// ID, so one is generated for each.
func convertResponse(resp *genai.GenerateContentResponse) *planlib.Response {
	out := &planlib.Response{}
	if resp == nil {
		return out
	}
	if u := resp.UsageMetadata; u != nil {
		out.InputToken = int(u.PromptTokenCount)
		out.OutputToken = int(u.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			out.Texts = append(out.Texts, string(v))
		case genai.FunctionCall:
			out.FunctionCalls = append(out.FunctionCalls, &planlib.FunctionCall{
				ID:        uuid.NewString(),
				Name:      v.Name,
				Arguments: v.Args,
			})
		}
	}
	return out
}
