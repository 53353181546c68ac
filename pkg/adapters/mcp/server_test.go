package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/pkg/adapters/memory"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

// stubEngine records the last TurnRequest and plays back a scripted result.
type stubEngine struct {
	sessions *session.Manager
	lastReq  switchyard.TurnRequest
	result   *switchyard.TurnResult
	err      error
}

func (e *stubEngine) Turn(ctx context.Context, req switchyard.TurnRequest) (*switchyard.TurnResult, error) {
	e.lastReq = req
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *stubEngine) Sessions() *session.Manager { return e.sessions }

func (e *stubEngine) Agents() []domain.AgentName {
	return []domain.AgentName{domain.AgentSupervisor, domain.AgentPolicy}
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		sessions: session.NewManager(memory.NewStore()),
		result: &switchyard.TurnResult{
			SessionID: "sess-1",
			Agent:     domain.AgentFinalAnswer,
			Reply:     "Your policy is active.",
			Complete:  true,
			Diagnostics: switchyard.Diagnostics{
				Iterations: 2,
				AgentsUsed: []string{"supervisor", "policy", "supervisor", "final_answer"},
			},
		},
	}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleChat(t *testing.T) {
	engine := newStubEngine()
	srv := NewServer(engine)

	args := map[string]any{
		"message":    "What is my policy status?",
		"session_id": "sess-1",
		"context":    `{"policy_number":"POL-000001"}`,
	}
	res, err := srv.handleChat(context.Background(), toolRequest(args), args)
	require.NoError(t, err)

	assert.Equal(t, "sess-1", res.SessionID)
	assert.Equal(t, "final_answer", res.Agent)
	assert.Equal(t, "Your policy is active.", res.Reply)
	assert.True(t, res.Complete)
	assert.Equal(t, 2, res.Iterations)

	assert.Equal(t, "What is my policy status?", engine.lastReq.Message)
	assert.Equal(t, "sess-1", engine.lastReq.SessionID)
	assert.Equal(t, map[string]string{"policy_number": "POL-000001"}, engine.lastReq.Context)
}

func TestHandleChatBadContext(t *testing.T) {
	srv := NewServer(newStubEngine())

	args := map[string]any{
		"message": "hello",
		"context": "not json",
	}
	_, err := srv.handleChat(context.Background(), toolRequest(args), args)
	assert.Error(t, err)
}

func TestHandleListSessions(t *testing.T) {
	engine := newStubEngine()
	srv := NewServer(engine)

	sess := domain.NewSession("sess-a", time.Now())
	require.NoError(t, engine.sessions.Save(context.Background(), sess))

	res, err := srv.handleListSessions(context.Background(), toolRequest(map[string]any{"limit": float64(5)}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "sess-a")
}

func TestHandleInspectSessionNotFound(t *testing.T) {
	srv := NewServer(newStubEngine())

	res, err := srv.handleInspectSession(context.Background(), toolRequest(map[string]any{"session_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleDeleteSession(t *testing.T) {
	engine := newStubEngine()
	srv := NewServer(engine)

	ctx := context.Background()
	sess := domain.NewSession("sess-b", time.Now())
	require.NoError(t, engine.sessions.Save(ctx, sess))

	res, err := srv.handleDeleteSession(ctx, toolRequest(map[string]any{"session_id": "sess-b"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	_, err = engine.sessions.Load(ctx, "sess-b")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
