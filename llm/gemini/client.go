// Package gemini implements planlib.LLMClient for Gemini on Vertex AI.
package gemini

import (
	"context"

	"cloud.google.com/go/vertexai/genai"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// Client is a client for the Gemini API on Vertex AI.
type Client struct {
	api    apiClient
	closer func() error

	model       string
	temperature *float32
	gcpOptions  []option.ClientOption
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = &temp
	}
}

// WithGoogleCloudOptions passes options to the underlying Vertex AI client,
// e.g. option.WithCredentialsFile.
func WithGoogleCloudOptions(opts ...option.ClientOption) Option {
	return func(c *Client) {
		c.gcpOptions = append(c.gcpOptions, opts...)
	}
}

func newClient(options ...Option) *Client {
	c := &Client{model: DefaultModel}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// New creates a new client for Gemini in the given Google Cloud project and
// location.
func New(ctx context.Context, projectID, location string, options ...Option) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required")
	}
	if location == "" {
		return nil, goerr.New("location is required")
	}

	c := newClient(options...)
	client, err := genai.NewClient(ctx, projectID, location, c.gcpOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client",
			goerr.V("project_id", projectID), goerr.V("location", location))
	}
	c.api = &realAPIClient{client: client}
	c.closer = client.Close

	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// NewSession starts a chat. History is kept by the chat across
// GenerateContent calls.
func (c *Client) NewSession(ctx context.Context, options ...planlib.SessionOption) (planlib.Session, error) {
	cfg := planlib.NewSessionConfig(options...)

	mc := modelConfig{
		model:       c.model,
		system:      cfg.SystemPrompt(),
		tools:       convertTools(cfg.Tools()),
		temperature: c.temperature,
		jsonMode:    cfg.ContentType() == planlib.ContentTypeJSON,
	}
	if t := cfg.Temperature(); t != nil {
		v := float32(*t)
		mc.temperature = &v
	}

	return &Session{chat: c.api.StartChat(mc), model: c.model}, nil
}

// Session is a session for the Gemini chat.
type Session struct {
	chat  chatSession
	model string
}

func (s *Session) GenerateContent(ctx context.Context, inputs ...planlib.Input) (*planlib.Response, error) {
	parts, err := convertInputs(inputs)
	if err != nil {
		return nil, err
	}

	planlib.LoggerFromContext(ctx).Debug("gemini request", "model", s.model, "parts", len(parts))

	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send message", goerr.V("model", s.model))
	}
	return convertResponse(resp), nil
}

var _ planlib.LLMClient = (*Client)(nil)
