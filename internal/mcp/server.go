// Package mcp registers the core debatearena tools on an MCP server, so MCP
// clients can run debates through the same orchestrator as the HTTP API.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/debatearena/internal/debate"
)

// NewServer creates an MCPServer with all debate tools registered.
func NewServer(orch *debate.Orchestrator, defaultDifficulty string) *server.MCPServer {
	srv := server.NewMCPServer(
		"debatearena",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerCreateDebate(srv, orch, defaultDifficulty)
	registerJoinDebate(srv, orch)
	registerSubmitArgument(srv, orch)
	registerGetDebate(srv, orch)
	registerListDebates(srv, orch)
	registerEndDebate(srv, orch)

	return srv
}

// --- create_debate ---

func registerCreateDebate(srv *server.MCPServer, orch *debate.Orchestrator, defaultDifficulty string) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":            map[string]string{"type": "string", "description": "The debate topic"},
			"mode":             map[string]string{"type": "string", "description": "human-vs-human or human-vs-ai"},
			"participant_name": map[string]string{"type": "string", "description": "Name of the first participant"},
			"difficulty":       map[string]string{"type": "string", "description": "easy, intermediate or hard (default intermediate)"},
		},
		"required": []string{"topic", "mode", "participant_name"},
	})
	tool := mcp.NewToolWithRawSchema("create_debate", "Start a new debate session", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		topic := stringArg(args, "topic")
		mode := stringArg(args, "mode")
		name := stringArg(args, "participant_name")
		if topic == "" || mode == "" || name == "" {
			return mcp.NewToolResultError("topic, mode and participant_name are required"), nil
		}
		if !debate.ValidMode(mode) {
			return mcp.NewToolResultError("mode must be human-vs-human or human-vs-ai"), nil
		}
		difficulty := stringArg(args, "difficulty")
		if difficulty == "" {
			difficulty = defaultDifficulty
		}
		d, err := orch.Store().Create(topic, mode, name, difficulty)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(d)
	})
}

// --- join_debate ---

func registerJoinDebate(srv *server.MCPServer, orch *debate.Orchestrator) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"debate_id":        map[string]string{"type": "string", "description": "Debate ID"},
			"participant_name": map[string]string{"type": "string", "description": "Name of the joining participant"},
		},
		"required": []string{"debate_id", "participant_name"},
	})
	tool := mcp.NewToolWithRawSchema("join_debate", "Join a human-vs-human debate as the second participant", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		d, err := orch.Store().Join(stringArg(args, "debate_id"), stringArg(args, "participant_name"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(d)
	})
}

// --- submit_argument ---

func registerSubmitArgument(srv *server.MCPServer, orch *debate.Orchestrator) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"debate_id":   map[string]string{"type": "string", "description": "Debate ID"},
			"participant": map[string]string{"type": "string", "description": "Name of the submitting participant"},
			"argument":    map[string]string{"type": "string", "description": "The argument text"},
		},
		"required": []string{"debate_id", "participant", "argument"},
	})
	tool := mcp.NewToolWithRawSchema("submit_argument", "Submit an argument; returns the AI reply or judge verdict when one fires", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		result, err := orch.SubmitArgument(ctx,
			stringArg(args, "debate_id"),
			stringArg(args, "participant"),
			stringArg(args, "argument"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// --- get_debate / list_debates ---

func registerGetDebate(srv *server.MCPServer, orch *debate.Orchestrator) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"debate_id": map[string]string{"type": "string", "description": "Debate ID"},
		},
		"required": []string{"debate_id"},
	})
	tool := mcp.NewToolWithRawSchema("get_debate", "Fetch a debate with its full argument history", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		d, err := orch.Store().Get(stringArg(req.GetArguments(), "debate_id"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(d)
	})
}

func registerListDebates(srv *server.MCPServer, orch *debate.Orchestrator) {
	schema, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	})
	tool := mcp.NewToolWithRawSchema("list_debates", "List all debates", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		debates, err := orch.Store().List()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(debates)
	})
}

// --- end_debate ---

func registerEndDebate(srv *server.MCPServer, orch *debate.Orchestrator) {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"debate_id": map[string]string{"type": "string", "description": "Debate ID"},
		},
		"required": []string{"debate_id"},
	})
	tool := mcp.NewToolWithRawSchema("end_debate", "End a debate and get the final structured evaluation", schema)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := orch.EndDebate(ctx, stringArg(req.GetArguments(), "debate_id"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// --- helpers ---

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
