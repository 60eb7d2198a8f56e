package gemini

import (
	"context"

	"cloud.google.com/go/vertexai/genai"
)

var (
	ConvertTools    = convertTools
	ConvertInputs   = convertInputs
	ConvertResponse = convertResponse
)

// ModelConfig is exported for testing with public fields
type ModelConfig struct {
	Model       string
	System      string
	Tools       []*genai.Tool
	Temperature *float32
	JSONMode    bool
}

// ChatFunc serves a test chat.
type ChatFunc func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

func (f ChatFunc) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f(ctx, parts...)
}

type testAPI struct {
	start func(cfg ModelConfig) ChatFunc
}

func (a *testAPI) StartChat(cfg modelConfig) chatSession {
	return a.start(ModelConfig{
		Model:       cfg.model,
		System:      cfg.system,
		Tools:       cfg.tools,
		Temperature: cfg.temperature,
		JSONMode:    cfg.jsonMode,
	})
}

// NewWithChat creates a client whose chats come from start for testing
func NewWithChat(start func(cfg ModelConfig) ChatFunc, options ...Option) *Client {
	c := newClient(options...)
	c.api = &testAPI{start: start}
	return c
}
