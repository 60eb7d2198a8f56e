// Package claude implements planlib.LLMClient for the Anthropic Messages API.
package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

type generationParameters struct {
	Temperature float64
	MaxTokens   int64
}

// Client is a client for the Claude API.
type Client struct {
	api apiClient

	model  string
	params generationParameters
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// Default: anthropic.ModelClaude3_5SonnetLatest
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Default: 0.7
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 4096
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

func newClient(options ...Option) *Client {
	c := &Client{
		model: string(anthropic.ModelClaude3_5SonnetLatest),
		params: generationParameters{
			Temperature: 0.7,
			MaxTokens:   4096,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("api key is required")
	}

	c := newClient(options...)
	api := anthropic.NewClient(option.WithAPIKey(apiKey))
	c.api = &realAPIClient{client: &api}
	return c, nil
}

// NewSession creates a conversation. Messages accumulate across
// GenerateContent calls.
func (c *Client) NewSession(ctx context.Context, options ...planlib.SessionOption) (planlib.Session, error) {
	cfg := planlib.NewSessionConfig(options...)

	s := &Session{
		api:    c.api,
		model:  c.model,
		params: c.params,
		tools:  convertTools(cfg.Tools()),
		system: cfg.SystemPrompt(),
	}
	if t := cfg.Temperature(); t != nil {
		s.params.Temperature = *t
	}
	if cfg.ContentType() == planlib.ContentTypeJSON {
		s.system += jsonInstruction
	}

	return s, nil
}

// Claude has no JSON response mode; the instruction and
// planlib.ExtractJSON on the caller side cover it.
const jsonInstruction = "\n\nRespond only with a single valid JSON object and no surrounding text."

// Session is a session for the Claude chat.
type Session struct {
	api    apiClient
	model  string
	params generationParameters
	tools  []anthropic.ToolUnionParam
	system string

	messages []anthropic.MessageParam
}

func (s *Session) request() anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   s.params.MaxTokens,
		Temperature: anthropic.Float(s.params.Temperature),
		Tools:       s.tools,
		Messages:    s.messages,
	}
	if s.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: s.system}}
	}
	return params
}

func (s *Session) GenerateContent(ctx context.Context, inputs ...planlib.Input) (*planlib.Response, error) {
	msgs, err := convertInputs(inputs)
	if err != nil {
		return nil, err
	}
	s.messages = append(s.messages, msgs...)

	planlib.LoggerFromContext(ctx).Debug("claude request", "model", s.model, "messages", len(s.messages), "tools", len(s.tools))

	resp, err := s.api.MessagesNew(ctx, s.request())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create message", goerr.V("model", s.model))
	}

	s.messages = append(s.messages, resp.ToParam())
	return convertResponse(resp)
}

var _ planlib.LLMClient = (*Client)(nil)
