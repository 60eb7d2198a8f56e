package claude

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

func convertTools(specs []planlib.ToolSpec) []anthropic.ToolUnionParam {
	if len(specs) == 0 {
		return nil
	}

	tools := make([]anthropic.ToolUnionParam, len(specs))
	for i, spec := range specs {
		tool := anthropic.ToolParam{
			Name: spec.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: spec.JSONSchema()["properties"],
			},
		}
		if spec.Description != "" {
			tool.Description = anthropic.String(spec.Description)
		}
		tools[i] = anthropic.ToolUnionParam{OfTool: &tool}
	}
	return tools
}

// convertInputs sends texts as user messages and groups all function
// responses into one trailing user message of tool results.
func convertInputs(inputs []planlib.Input) ([]anthropic.MessageParam, error) {
	var messages []anthropic.MessageParam
	var toolResults []anthropic.ContentBlockParamUnion

	for _, in := range inputs {
		switch v := in.(type) {
		case planlib.Text:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(string(v))))

		case planlib.FunctionResponse:
			data := v.Data
			if v.Error != nil {
				data = map[string]any{"error": v.Error.Error()}
			}
			raw, err := json.Marshal(data)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to marshal function response", goerr.V("name", v.Name))
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(v.ID, string(raw), v.Error != nil))

		default:
			return nil, goerr.Wrap(planlib.ErrInvalidParameter, "unsupported input", goerr.V("input", in))
		}
	}

	if len(toolResults) > 0 {
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}
	return messages, nil
}

func convertResponse(msg *anthropic.Message) (*planlib.Response, error) {
	resp := &planlib.Response{
		InputToken:  int(msg.Usage.InputTokens),
		OutputToken: int(msg.Usage.OutputTokens),
	}

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			resp.Texts = append(resp.Texts, block.Text)

		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, goerr.Wrap(planlib.ErrMalformedOutput, "failed to unmarshal tool input",
						goerr.V("name", block.Name))
				}
			}
			resp.FunctionCalls = append(resp.FunctionCalls, &planlib.FunctionCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	return resp, nil
}
