package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/pkg/adapters/memory"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/observability"
	"github.com/switchyard-ai/switchyard/pkg/ports"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

type scriptedReasoner struct {
	mu      sync.Mutex
	replies []ports.Inference
	err     error
	calls   int
}

func (s *scriptedReasoner) Infer(_ context.Context, _ ports.InferenceRequest) (*ports.Inference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	s.calls++
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	if i < 0 {
		return &ports.Inference{}, nil
	}
	reply := s.replies[i]
	return &reply, nil
}

// resolution scripts one turn: supervisor to the policy specialist, specialist
// answers from records, supervisor to final answer.
func resolution() []ports.Inference {
	return []ports.Inference{
		{NextAgent: "policy", Task: "Look up the policy"},
		{},
		{NextAgent: "final_answer", Task: "Deliver the answer"},
		{},
	}
}

func newTestEngine(t *testing.T, reasoner ports.Reasoner, opts ...switchyard.Option) *switchyard.Engine {
	t.Helper()
	base := []switchyard.Option{
		switchyard.WithReasoner(reasoner),
		switchyard.WithClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
	}
	eng, err := switchyard.New(append(base, opts...)...)
	require.NoError(t, err)
	return eng
}

func newTestHandler(t *testing.T, engine Engine, opts ...Option) http.Handler {
	t.Helper()
	handler, err := NewHandler(engine, opts...)
	require.NoError(t, err)
	return handler
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["version"])
}

func TestOpenAPIDocumentServed(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Switchyard API")
}

func TestSwaggerPage(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "swagger-ui")
}

func TestInvalidSpecFailsConstruction(t *testing.T) {
	_, err := NewHandler(newTestEngine(t, &scriptedReasoner{}),
		withSpec([]byte("openapi: \"3.0.3\"\ninfo: {title: incomplete}")))
	require.Error(t, err)
}

func TestChatResolvesTurn(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{replies: resolution()}))

	rr := postChat(t, handler, `{"message": "What's the status of policy POL-000002?"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "final_answer", resp.Agent)
	assert.True(t, resp.ConversationComplete)
	assert.False(t, resp.NeedsClarification)
	assert.True(t, resp.NewSession)
	assert.Contains(t, resp.Reply, "POL000002")
	assert.Equal(t, 2, resp.Diagnostics.Iterations)
	assert.Equal(t, []string{"supervisor", "policy", "supervisor", "final_answer"},
		resp.Diagnostics.AgentsUsed)
}

func TestChatClarificationPausesTurn(t *testing.T) {
	question := "Could you share your policy number?"
	reasoner := &scriptedReasoner{replies: []ports.Inference{{Question: question}}}
	handler := newTestHandler(t, newTestEngine(t, reasoner))

	rr := postChat(t, handler, `{"message": "I have a billing question."}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.NeedsClarification)
	assert.False(t, resp.ConversationComplete)
	assert.Equal(t, "supervisor", resp.Agent)
	assert.Equal(t, question, resp.Reply)
}

func TestChatValidation(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := postChat(t, handler, `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "message")

	rr = postChat(t, handler, `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChatReasonerOutageIsRetryable(t *testing.T) {
	reasoner := &scriptedReasoner{}
	reasoner.err = &domain.ExternalError{Service: "reasoner", Err: errors.New("connection refused")}
	handler := newTestHandler(t, newTestEngine(t, reasoner))

	rr := postChat(t, handler, `{"message": "hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Retryable)
}

func TestChatConcurrentTurnConflicts(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), session.WithConflictPolicy(session.Reject))
	eng := newTestEngine(t, &scriptedReasoner{replies: resolution()},
		switchyard.WithSessions(manager))
	handler := newTestHandler(t, eng)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- manager.WithLock(context.Background(), "busy", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer func() {
		close(release)
		require.NoError(t, <-done)
	}()

	rr := postChat(t, handler, `{"message": "hello", "session_id": "busy"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Session reads hit the same lock under the reject policy.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/busy", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{replies: resolution()}))

	rr := postChat(t, handler, `{"message": "Status of POL-000002?"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var chat chatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chat))
	id := chat.SessionID

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list sessionList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, id, list.Sessions[0].ID)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var sess domain.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	assert.Equal(t, id, sess.ID)
	assert.True(t, sess.Meta.Completed)
	assert.NotEmpty(t, sess.State.Messages)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, id, summary.ID)
	assert.Greater(t, summary.MessageCount, 0)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/refresh", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/refresh", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListLimitValidation(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	for _, limit := range []string{"abc", "-1"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "limit=%s", limit)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewHTTPMetrics(reg)
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}),
		WithMetrics(metrics), WithGatherer(reg))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "switchyard_http_requests_total")
}

func TestRequestIDPropagation(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-me-42")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "trace-me-42", rr.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestFollowUpTurnSharesSession(t *testing.T) {
	script := append(resolution(), resolution()...)
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{replies: script}))

	rr := postChat(t, handler, `{"message": "Status of POL-000002?"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var first chatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))

	rr = postChat(t, handler, fmt.Sprintf(
		`{"message": "Thanks, and the premium?", "session_id": %q}`, first.SessionID))
	require.Equal(t, http.StatusOK, rr.Code)
	var second chatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.False(t, second.NewSession)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+first.SessionID+"/summary", nil))
	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 4, summary.TotalIterations)
}

func TestUnknownRouteIs404(t *testing.T) {
	handler := newTestHandler(t, newTestEngine(t, &scriptedReasoner{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// withSpec swaps the embedded document, for construction-failure tests.
func withSpec(spec []byte) Option {
	return func(s *Server) {
		s.spec = spec
	}
}
