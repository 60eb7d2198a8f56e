package planlib

import (
	"context"

	"github.com/m-mizutani/planlib/trace"
)

// Generate calls session.GenerateContent inside an LLM call span of the
// trace handler held by ctx, if any.
func Generate(ctx context.Context, session Session, cfg *SessionConfig, inputs ...Input) (*Response, error) {
	h := trace.HandlerFrom(ctx)
	if h != nil {
		ctx = h.StartLLMCall(ctx)
	}

	resp, err := session.GenerateContent(ctx, inputs...)

	if h != nil {
		h.EndLLMCall(ctx, llmCallData(cfg, inputs, resp), err)
	}
	return resp, err
}

func llmCallData(cfg *SessionConfig, inputs []Input, resp *Response) *trace.LLMCallData {
	data := &trace.LLMCallData{
		Request: &trace.LLMRequest{},
	}

	if cfg != nil {
		data.Request.SystemPrompt = cfg.SystemPrompt()
		data.Request.Temperature = cfg.Temperature()
		data.Request.ContentType = string(cfg.ContentType())
		for _, spec := range cfg.Tools() {
			data.Request.Tools = append(data.Request.Tools, trace.ToolSpec{
				Name:        spec.Name,
				Description: spec.Description,
			})
		}
	}

	for _, input := range inputs {
		data.Request.Messages = append(data.Request.Messages, trace.Message{
			Role:    "user",
			Content: input.String(),
		})
	}

	if resp != nil {
		data.InputTokens = resp.InputToken
		data.OutputTokens = resp.OutputToken
		data.Response = &trace.LLMResponse{Texts: resp.Texts}
		for _, fc := range resp.FunctionCalls {
			data.Response.FunctionCalls = append(data.Response.FunctionCalls, &trace.FunctionCall{
				ID:        fc.ID,
				Name:      fc.Name,
				Arguments: fc.Arguments,
			})
		}
	}

	return data
}

// Ask runs a single-turn exchange in a fresh session and returns the joined
// response text. It is used by scorers, comparers, reflectors and planners.
func Ask(ctx context.Context, client LLMClient, prompt string, options ...SessionOption) (string, error) {
	cfg := NewSessionConfig(options...)
	session, err := client.NewSession(ctx, options...)
	if err != nil {
		return "", err
	}

	resp, err := Generate(ctx, session, &cfg, Text(prompt))
	if err != nil {
		return "", err
	}
	return joinTexts(resp.Texts), nil
}
