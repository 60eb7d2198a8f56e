package planlib

//go:generate go tool moq -out mock/planlib.go -pkg mock . LLMClient Session Agent MultiProposer ActionExecutor

import (
	"context"
	"log/slog"
)

// LLMClient is a client for each LLM service.
type LLMClient interface {
	NewSession(ctx context.Context, options ...SessionOption) (Session, error)
}

// Session is one conversation with an LLM. Successive GenerateContent calls
// share the conversation history.
type Session interface {
	GenerateContent(ctx context.Context, inputs ...Input) (*Response, error)
}

type FunctionCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Response is a general response type for each LLM service.
type Response struct {
	Texts         []string
	FunctionCalls []*FunctionCall
	InputToken    int
	OutputToken   int
}

func (r *Response) HasData() bool {
	return len(r.Texts) > 0 || len(r.FunctionCalls) > 0
}

type Input interface {
	isInput() restrictedValue
	LogValue() slog.Value
	String() string
}

// Text is a text input as prompt.
type Text string

func (t Text) isInput() restrictedValue {
	return restrictedValue{}
}

func (t Text) LogValue() slog.Value {
	return slog.StringValue(string(t))
}

func (t Text) String() string {
	return string(t)
}

// FunctionResponse returns the result of a function call to the LLM.
type FunctionResponse struct {
	ID    string
	Name  string
	Data  map[string]any
	Error error
}

func (f FunctionResponse) isInput() restrictedValue {
	return restrictedValue{}
}

func (f FunctionResponse) String() string {
	if f.Error != nil {
		return f.Name + " (error: " + f.Error.Error() + ")"
	}
	return f.Name + " (success)"
}

func (f FunctionResponse) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", f.ID),
		slog.String("name", f.Name),
	}
	if f.Data != nil {
		attrs = append(attrs, slog.Any("data", f.Data))
	}
	if f.Error != nil {
		attrs = append(attrs, slog.String("error", f.Error.Error()))
	}
	return slog.GroupValue(attrs...)
}

// ContentType selects the format an LLM must answer in.
type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeJSON ContentType = "json"
)

// SessionConfig is the resolved set of SessionOptions. LLM client packages
// read it through NewSessionConfig.
type SessionConfig struct {
	systemPrompt string
	tools        []ToolSpec
	contentType  ContentType
	temperature  *float64
}

func (c *SessionConfig) SystemPrompt() string     { return c.systemPrompt }
func (c *SessionConfig) Tools() []ToolSpec        { return c.tools }
func (c *SessionConfig) ContentType() ContentType { return c.contentType }
func (c *SessionConfig) Temperature() *float64    { return c.temperature }

// NewSessionConfig applies options over defaults.
func NewSessionConfig(options ...SessionOption) SessionConfig {
	cfg := SessionConfig{
		contentType: ContentTypeText,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

type SessionOption func(cfg *SessionConfig)

func WithSessionSystemPrompt(prompt string) SessionOption {
	return func(cfg *SessionConfig) {
		cfg.systemPrompt = prompt
	}
}

func WithSessionTools(specs ...ToolSpec) SessionOption {
	return func(cfg *SessionConfig) {
		cfg.tools = append(cfg.tools, specs...)
	}
}

func WithSessionContentType(contentType ContentType) SessionOption {
	return func(cfg *SessionConfig) {
		cfg.contentType = contentType
	}
}

// WithSessionTemperature overrides the client's sampling temperature.
// Sample-mode tree search raises it so that i.i.d. calls differ.
func WithSessionTemperature(t float64) SessionOption {
	return func(cfg *SessionConfig) {
		cfg.temperature = &t
	}
}
