package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// apiClient is the part of the OpenAI API a Session uses.
type apiClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ apiClient = (*openai.Client)(nil)
