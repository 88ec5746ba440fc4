package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	mcpName    = "bertraco"
	mcpVersion = "1.0.0"
)

// NewMCPServer exposes asking questions and watching the face as MCP tools.
func NewMCPServer(submitter Submitter, snapshots Snapshotter) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(mcpName, mcpVersion, mcpserver.WithToolCapabilities(false))

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask the assistant a question. The answer is spoken and shown on screen."),
			mcp.WithString("question",
				mcp.Required(),
				mcp.Description("Question text"),
			),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			question, err := req.RequireString("question")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if !submitter.Submit(question) {
				return mcp.NewToolResultError("question rejected"), nil
			}

			return mcp.NewToolResultText("question queued"), nil
		},
	)

	s.AddTool(
		mcp.NewTool("face_state",
			mcp.WithDescription("Current state of the animated face"),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			snapshot, err := takeSnapshot(ctx, snapshots)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			data, err := json.Marshal(snapshot.Frame)
			if err != nil {
				return nil, err
			}

			return mcp.NewToolResultText(string(data)), nil
		},
	)

	return s
}
