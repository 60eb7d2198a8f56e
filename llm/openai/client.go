// Package openai implements planlib.LLMClient for the OpenAI chat completion API.
package openai

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// Client is a client for the OpenAI API.
type Client struct {
	api apiClient

	model       string
	baseURL     string
	temperature float32
	maxTokens   int
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the chat completion model. See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithTemperature sets the default sampling temperature. A session option
// from planlib.WithSessionTemperature takes precedence.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// WithBaseURL sets a custom base URL for OpenAI compatible endpoints.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("api key is required")
	}

	c := &Client{model: DefaultModel}
	for _, opt := range options {
		opt(c)
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.api = openai.NewClientWithConfig(cfg)

	return c, nil
}

// NewSession creates a conversation. Messages accumulate across
// GenerateContent calls.
func (c *Client) NewSession(ctx context.Context, options ...planlib.SessionOption) (planlib.Session, error) {
	cfg := planlib.NewSessionConfig(options...)

	s := &Session{
		api:       c.api,
		model:     c.model,
		maxTokens: c.maxTokens,
		tools:     convertTools(cfg.Tools()),
		jsonMode:  cfg.ContentType() == planlib.ContentTypeJSON,
	}

	s.temperature = c.temperature
	if t := cfg.Temperature(); t != nil {
		s.temperature = float32(*t)
	}

	if prompt := cfg.SystemPrompt(); prompt != "" {
		s.messages = append(s.messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}

	return s, nil
}

// Session is a session for the OpenAI chat.
type Session struct {
	api         apiClient
	model       string
	maxTokens   int
	temperature float32
	tools       []openai.Tool
	jsonMode    bool

	messages []openai.ChatCompletionMessage
}

func (s *Session) GenerateContent(ctx context.Context, inputs ...planlib.Input) (*planlib.Response, error) {
	msgs, err := convertInputs(inputs)
	if err != nil {
		return nil, err
	}
	s.messages = append(s.messages, msgs...)

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    s.messages,
		Tools:       s.tools,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}
	if s.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	planlib.LoggerFromContext(ctx).Debug("openai request", "model", s.model, "messages", len(s.messages), "tools", len(s.tools))

	resp, err := s.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat completion", goerr.V("model", s.model))
	}

	if len(resp.Choices) == 0 {
		return &planlib.Response{}, nil
	}

	message := resp.Choices[0].Message
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   message.Content,
		ToolCalls: message.ToolCalls,
	})

	out, err := convertResponse(message)
	if err != nil {
		return nil, err
	}
	out.InputToken = resp.Usage.PromptTokens
	out.OutputToken = resp.Usage.CompletionTokens
	return out, nil
}

var _ planlib.LLMClient = (*Client)(nil)
