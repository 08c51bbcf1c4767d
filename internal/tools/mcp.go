package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName identifies the agent to MCP clients.
const ServerName = "ucp-agent"

// NewMCPServer creates an MCP server with every action registered as a tool.
// Tool results always carry a single text block; failures are rendered into
// that text rather than returned as protocol errors.
func NewMCPServer(s *Surface, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: "UCP shopping agent. Search the catalog, build a cart, " +
				"add customer details, then complete the checkout.",
		},
	)

	for _, a := range actions {
		a.register(s, server)
	}
	return server
}

func addTool[In any](server *mcp.Server, name, description string, fn func(context.Context, In) string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		return textResult(fn(ctx, in)), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
