package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// apiClient is the part of the Claude API a Session uses.
type apiClient interface {
	MessagesNew(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type realAPIClient struct {
	client *anthropic.Client
}

func (r *realAPIClient) MessagesNew(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return r.client.Messages.New(ctx, params)
}
