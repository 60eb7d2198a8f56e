package openai

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/sashabaranov/go-openai"
)

func convertTools(specs []planlib.ToolSpec) []openai.Tool {
	if len(specs) == 0 {
		return nil
	}

	tools := make([]openai.Tool, len(specs))
	for i, spec := range specs {
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.JSONSchema(),
			},
		}
	}
	return tools
}

func convertInputs(inputs []planlib.Input) ([]openai.ChatCompletionMessage, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(inputs))
	for _, in := range inputs {
		switch v := in.(type) {
		case planlib.Text:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: string(v),
			})

		case planlib.FunctionResponse:
			data := v.Data
			if v.Error != nil {
				data = map[string]any{"error": v.Error.Error()}
			}
			raw, err := json.Marshal(data)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to marshal function response", goerr.V("name", v.Name))
			}
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    string(raw),
				ToolCallID: v.ID,
			})

		default:
			return nil, goerr.Wrap(planlib.ErrInvalidParameter, "unsupported input", goerr.V("input", in))
		}
	}
	return msgs, nil
}

func convertResponse(message openai.ChatCompletionMessage) (*planlib.Response, error) {
	resp := &planlib.Response{}
	if message.Content != "" {
		resp.Texts = append(resp.Texts, message.Content)
	}

	for _, call := range message.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, goerr.Wrap(planlib.ErrMalformedOutput, "failed to unmarshal tool arguments",
					goerr.V("name", call.Function.Name), goerr.V("arguments", call.Function.Arguments))
			}
		}
		resp.FunctionCalls = append(resp.FunctionCalls, &planlib.FunctionCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return resp, nil
}
