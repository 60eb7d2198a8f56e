package openai

import (
	"github.com/sashabaranov/go-openai"
)

var (
	ConvertTools    = convertTools
	ConvertInputs   = convertInputs
	ConvertResponse = convertResponse
)

type APIClient = apiClient

// NewWithAPIClient creates a client over a custom API client for testing
func NewWithAPIClient(api apiClient, options ...Option) *Client {
	c := &Client{model: DefaultModel}
	for _, opt := range options {
		opt(c)
	}
	c.api = api
	return c
}

// Messages returns the accumulated conversation for testing
func (s *Session) Messages() []openai.ChatCompletionMessage {
	return s.messages
}
