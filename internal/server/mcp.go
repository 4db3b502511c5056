package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/model"
)

// ToolName is the MCP tool answering travel questions
const ToolName = "travel_query"

// NewMCPServer builds an MCP server exposing the router as one tool.
func NewMCPServer(runner Runner, version string, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"basir",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Answer travel questions (activities, accommodation, visas, scams, local dishes, "+
			"transportation, seasons, restaurants) from the curated travel knowledge base."),
	)

	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Classify a travel question by topic, search the knowledge base for each topic "+
			"and return structured results keyed by specialist role."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The traveller's question, e.g. 'cheap hostels and street food in Hanoi'"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, travelQueryHandler(runner, logger))

	return s
}

func travelQueryHandler(runner Runner, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := runner.Run(ctx, query)
		logger.Info("travel_query",
			zap.String("request_id", resp.RequestID),
			zap.String("kind", string(resp.Kind)))

		data, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		if resp.Kind != model.ResponseOK {
			return mcp.NewToolResultError(string(data)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio runs the MCP server on stdin/stdout until EOF or a signal
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
