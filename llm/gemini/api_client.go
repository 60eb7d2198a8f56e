package gemini

import (
	"context"

	"cloud.google.com/go/vertexai/genai"
)

// modelConfig is the per-session model setup.
type modelConfig struct {
	model       string
	system      string
	tools       []*genai.Tool
	temperature *float32
	jsonMode    bool
}

// chatSession is one Gemini chat. *genai.ChatSession implements it.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// apiClient starts chats (unexported for encapsulation)
type apiClient interface {
	StartChat(cfg modelConfig) chatSession
}

type realAPIClient struct {
	client *genai.Client
}

func (r *realAPIClient) StartChat(cfg modelConfig) chatSession {
	model := r.client.GenerativeModel(cfg.model)
	model.Tools = cfg.tools
	if cfg.system != "" {
		model.SystemInstruction = &genai.Content{
			Role:  "system",
			Parts: []genai.Part{genai.Text(cfg.system)},
		}
	}
	if cfg.temperature != nil {
		model.SetTemperature(*cfg.temperature)
	}
	if cfg.jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	return model.StartChat()
}

var _ chatSession = (*genai.ChatSession)(nil)
