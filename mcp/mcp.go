// Package mcp exposes the tools of an MCP server as a planlib.ToolSet.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	DefaultClientName    = "planlib"
	DefaultClientVersion = "0.1.0"
)

// mcpClient is the part of the MCP client API used by Client.
type mcpClient interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Client is a ToolSet backed by an MCP server.
type Client struct {
	client mcpClient

	name    string
	version string

	envVars []string
	headers map[string]string

	initMutex   sync.Mutex
	initialized bool
}

// Option configures a Client.
type Option func(*Client)

// WithEnvVars adds environment variables ("KEY=value") for a stdio server process.
func WithEnvVars(envVars []string) Option {
	return func(c *Client) {
		c.envVars = append(c.envVars, envVars...)
	}
}

// WithHeaders sets HTTP headers for an SSE server.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithClientInfo sets the client name and version sent on initialization.
func WithClientInfo(name, version string) Option {
	return func(c *Client) {
		c.name = name
		c.version = version
	}
}

func newClient(options ...Option) *Client {
	c := &Client{
		name:    DefaultClientName,
		version: DefaultClientVersion,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// NewStdio starts the MCP server at path and connects to it over stdio.
func NewStdio(ctx context.Context, path string, args []string, options ...Option) (*Client, error) {
	c := newClient(options...)

	mc, err := client.NewStdioMCPClient(path, c.envVars, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start MCP server", goerr.V("path", path))
	}
	c.client = mc

	if err := c.init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewSSE connects to an MCP server over SSE.
func NewSSE(ctx context.Context, baseURL string, options ...Option) (*Client, error) {
	c := newClient(options...)

	mc, err := client.NewSSEMCPClient(baseURL, transport.WithHeaders(c.headers))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create SSE client", goerr.V("url", baseURL))
	}
	if err := mc.Start(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to start SSE client", goerr.V("url", baseURL))
	}
	c.client = mc

	if err := c.init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) init(ctx context.Context) error {
	c.initMutex.Lock()
	defer c.initMutex.Unlock()

	if c.initialized {
		return nil
	}

	var req mcp.InitializeRequest
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    c.name,
		Version: c.version,
	}

	resp, err := c.client.Initialize(ctx, req)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize MCP client")
	}
	c.initialized = true

	planlib.LoggerFromContext(ctx).Debug("MCP client initialized",
		"server", resp.ServerInfo.Name, "version", resp.ServerInfo.Version)
	return nil
}

// Specs lists the server's tools.
func (c *Client) Specs(ctx context.Context) ([]planlib.ToolSpec, error) {
	resp, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tools")
	}

	specs := make([]planlib.ToolSpec, len(resp.Tools))
	names := make([]string, len(resp.Tools))
	for i, tool := range resp.Tools {
		spec, err := convertTool(tool)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert tool to spec", goerr.V("tool", tool.Name))
		}
		specs[i] = spec
		names[i] = tool.Name
	}

	planlib.LoggerFromContext(ctx).Debug("found MCP tools", "names", names)
	return specs, nil
}

// Run calls a tool. A result flagged as error by the server is returned as
// an error so that the executor records it as an observation.
func (c *Client) Run(ctx context.Context, name string, args map[string]any) (any, error) {
	planlib.LoggerFromContext(ctx).Debug("call MCP tool", "name", name, "args", args)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	resp, err := c.client.CallTool(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call tool", goerr.V("name", name))
	}

	result := contentToMap(resp.Content)
	if resp.IsError {
		return nil, goerr.New("tool returned error", goerr.V("name", name), goerr.V("result", result))
	}
	return result, nil
}

// Close shuts down the connection and, for stdio, the server process.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close MCP client")
	}
	return nil
}

func convertTool(tool mcp.Tool) (planlib.ToolSpec, error) {
	spec := planlib.ToolSpec{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  make(map[string]*planlib.Parameter, len(tool.InputSchema.Properties)),
		Required:    tool.InputSchema.Required,
	}

	for name, property := range tool.InputSchema.Properties {
		prop, ok := property.(map[string]any)
		if !ok {
			return spec, goerr.Wrap(planlib.ErrInvalidParameter, "invalid property", goerr.V("property", name))
		}
		spec.Parameters[name] = propertyToParameter(prop)
	}

	return spec, nil
}

func valueOrEmpty[T any](v any) T {
	var empty T
	if v, ok := v.(T); ok {
		return v
	}
	return empty
}

func propertyToParameter(prop map[string]any) *planlib.Parameter {
	p := &planlib.Parameter{
		Type:        planlib.ParameterType(valueOrEmpty[string](prop["type"])),
		Title:       valueOrEmpty[string](prop["title"]),
		Description: valueOrEmpty[string](prop["description"]),
		Pattern:     valueOrEmpty[string](prop["pattern"]),
	}
	if p.Type == "" {
		p.Type = planlib.TypeString
	}

	for _, e := range valueOrEmpty[[]any](prop["enum"]) {
		p.Enum = append(p.Enum, fmt.Sprint(e))
	}
	for _, r := range valueOrEmpty[[]any](prop["required"]) {
		if s, ok := r.(string); ok {
			p.Required = append(p.Required, s)
		}
	}
	if v, ok := prop["minimum"].(float64); ok {
		p.Minimum = &v
	}
	if v, ok := prop["maximum"].(float64); ok {
		p.Maximum = &v
	}

	switch p.Type {
	case planlib.TypeObject:
		p.Properties = map[string]*planlib.Parameter{}
		for k, v := range valueOrEmpty[map[string]any](prop["properties"]) {
			if m, ok := v.(map[string]any); ok {
				p.Properties[k] = propertyToParameter(m)
			}
		}
	case planlib.TypeArray:
		items := valueOrEmpty[map[string]any](prop["items"])
		p.Items = propertyToParameter(items)
	}

	return p
}

// contentToMap renders tool result contents. A single JSON object text is
// returned as is; other texts are keyed "result" or "content_N".
func contentToMap(contents []mcp.Content) map[string]any {
	var texts []string
	for _, c := range contents {
		switch v := c.(type) {
		case mcp.TextContent:
			texts = append(texts, v.Text)
		case *mcp.TextContent:
			texts = append(texts, v.Text)
		}
	}

	switch len(texts) {
	case 0:
		return nil
	case 1:
		var v any
		if err := json.Unmarshal([]byte(texts[0]), &v); err == nil {
			if m, ok := v.(map[string]any); ok {
				return m
			}
			return map[string]any{"result": v}
		}
		return map[string]any{"result": texts[0]}
	default:
		out := make(map[string]any, len(texts))
		for i, t := range texts {
			out[fmt.Sprintf("content_%d", i+1)] = t
		}
		return out
	}
}

var _ planlib.ToolSet = (*Client)(nil)
