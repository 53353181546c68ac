// Package mcp exposes the engine over the Model Context Protocol, so AI
// agents (Claude Desktop, IDE assistants) can drive support conversations and
// manage sessions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

// Engine defines the surface the MCP server binds to.
type Engine interface {
	Turn(ctx context.Context, req switchyard.TurnRequest) (*switchyard.TurnResult, error)
	Sessions() *session.Manager
	Agents() []domain.AgentName
}

// ChatResponse is the structured result of the chat tool. It mirrors the
// REST chat response so clients see one shape across adapters.
type ChatResponse struct {
	SessionID          string   `json:"session_id" jsonschema_description:"Session to reuse for follow-up messages"`
	Agent              string   `json:"agent" jsonschema_description:"Agent that produced the reply"`
	Reply              string   `json:"reply" jsonschema_description:"Assistant reply text"`
	NeedsClarification bool     `json:"needs_clarification" jsonschema_description:"The assistant asked a question and is waiting for the answer"`
	Complete           bool     `json:"conversation_complete" jsonschema_description:"A terminal agent finished the turn"`
	NewSession         bool     `json:"new_session" jsonschema_description:"This call created the session"`
	Iterations         int      `json:"iterations" jsonschema_description:"Routing-loop passes this turn took"`
	AgentsUsed         []string `json:"agents_used" jsonschema_description:"Agents visited this turn, in order"`
}

// Server wraps an Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools and resources.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("switchyard-mcp", strings.TrimSpace(switchyard.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a message to the insurance support assistant. Pass the returned session_id on follow-ups to keep conversation context."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
		mcp.WithString("session_id", mcp.Description("Session to resume (optional; omit to start a new conversation)")),
		mcp.WithString("context", mcp.Description("JSON object of known facts, e.g. {\"policy_number\":\"POL-000001\"} (optional)")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List live conversation sessions, most recently updated first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return (default 20)")),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("inspect_session",
		mcp.WithDescription("Fetch the full state of a session, including the message transcript."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleInspectSession)

	s.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session and its conversation history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleDeleteSession)
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	message, _ := args["message"].(string)
	sessionID, _ := args["session_id"].(string)

	var seed map[string]string
	if ctxStr, ok := args["context"].(string); ok && ctxStr != "" {
		if err := json.Unmarshal([]byte(ctxStr), &seed); err != nil {
			return ChatResponse{}, fmt.Errorf("context must be a JSON object of strings: %w", err)
		}
	}

	res, err := s.engine.Turn(ctx, switchyard.TurnRequest{
		SessionID: sessionID,
		Message:   message,
		Context:   seed,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("turn failed: %w", err)
	}

	return ChatResponse{
		SessionID:          res.SessionID,
		Agent:              string(res.Agent),
		Reply:              res.Reply,
		NeedsClarification: res.NeedsClarification,
		Complete:           res.Complete,
		NewSession:         res.New,
		Iterations:         res.Diagnostics.Iterations,
		AgentsUsed:         res.Diagnostics.AgentsUsed,
	}, nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if raw, ok := request.GetArguments()["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	summaries, err := s.engine.Sessions().List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, _ := json.Marshal(summaries)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleInspectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := request.GetArguments()["session_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	sess, err := s.engine.Sessions().Load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("session %q not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	data, _ := json.MarshalIndent(sess, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := request.GetArguments()["session_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	if err := s.engine.Sessions().Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted session %q", id)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("switchyard://agents", "Agent Roster",
		mcp.WithResourceDescription("The fixed agent roster, in routing order: hub, specialists, terminals."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Agents())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal roster: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "switchyard://agents",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
