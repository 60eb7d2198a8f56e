package mcp

import "context"

var (
	ConvertTool  = convertTool
	ContentToMap = contentToMap
)

type MCPClient = mcpClient

// NewWithClient wraps a custom MCP client for testing
func NewWithClient(ctx context.Context, mc mcpClient, options ...Option) (*Client, error) {
	c := newClient(options...)
	c.client = mc
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

