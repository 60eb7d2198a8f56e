package claude

import "github.com/anthropics/anthropic-sdk-go"

var (
	ConvertTools    = convertTools
	ConvertInputs   = convertInputs
	ConvertResponse = convertResponse
)

type APIClient = apiClient

// NewWithAPIClient creates a client over a custom API client for testing
func NewWithAPIClient(api apiClient, options ...Option) *Client {
	c := newClient(options...)
	c.api = api
	return c
}

// Messages returns the accumulated conversation for testing
func (s *Session) Messages() []anthropic.MessageParam {
	return s.messages
}
