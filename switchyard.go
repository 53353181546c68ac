package switchyard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/switchyard-ai/switchyard/internal/agents"
	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/internal/runtime"
	"github.com/switchyard-ai/switchyard/pkg/adapters/memory"
	"github.com/switchyard-ai/switchyard/pkg/adapters/staticdir"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

// fallbackReply is returned when a turn ends without any assistant text.
const fallbackReply = "I apologize, but I couldn't generate a response. Please try again."

// Engine is the high-level entry point for the Switchyard library.
// It wires the agent roster, the routing loop, and the session layer behind
// a single Turn call, and provides a simplified API for consumers.
type Engine struct {
	orchestrator *runtime.Orchestrator
	sessions     *session.Manager

	reasoner      ports.Reasoner
	policies      ports.PolicyDirectory
	billing       ports.BillingDirectory
	claims        ports.ClaimsDirectory
	retriever     ports.Retriever
	topK          int
	maxIterations int
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	clock         func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithReasoner injects the language-model collaborator. Required.
func WithReasoner(r ports.Reasoner) Option {
	return func(e *Engine) {
		e.reasoner = r
	}
}

// WithSessions injects a custom session manager, bypassing the default
// in-memory store. Use this to back the engine with Redis or to set a
// conflict policy.
func WithSessions(m *session.Manager) Option {
	return func(e *Engine) {
		e.sessions = m
	}
}

// WithDirectories injects the systems of record consulted by the
// specialists. All three are replaced together; the default is the fixture
// dataset.
func WithDirectories(p ports.PolicyDirectory, b ports.BillingDirectory, c ports.ClaimsDirectory) Option {
	return func(e *Engine) {
		e.policies = p
		e.billing = b
		e.claims = c
	}
}

// WithRetriever injects the knowledge-base search used by general help.
func WithRetriever(r ports.Retriever) Option {
	return func(e *Engine) {
		e.retriever = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability callbacks fired on agent entry/exit and
// turn end.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxIterations sets the routing-loop cap per turn (default 3).
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithTopK caps knowledge-base hits per retrieval.
func WithTopK(k int) Option {
	return func(e *Engine) {
		e.topK = k
	}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New initializes a Switchyard Engine.
// A reasoner must be provided; every other collaborator has a working
// default, so the library runs out of the box against the bundled fixture
// dataset and an in-memory session store.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.reasoner == nil {
		return nil, fmt.Errorf("a reasoner is required (use WithReasoner)")
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.clock == nil {
		e.clock = time.Now
	}

	// Default directories share one fixture dataset so cross-references
	// (policy numbers on bills and claims) stay consistent.
	if e.policies == nil || e.billing == nil || e.claims == nil {
		dir := staticdir.New()
		if e.policies == nil {
			e.policies = dir
		}
		if e.billing == nil {
			e.billing = dir
		}
		if e.claims == nil {
			e.claims = dir
		}
	}
	if e.retriever == nil {
		e.retriever = staticdir.NewRetriever(staticdir.DefaultDataset().FAQs)
	}
	if e.sessions == nil {
		e.sessions = session.NewManager(
			memory.NewStore(),
			session.WithLogger(e.logger),
			session.WithClock(e.clock),
		)
	}

	roster, err := agents.Roster(agents.Deps{
		Reasoner:  e.reasoner,
		Policies:  e.policies,
		Billing:   e.billing,
		Claims:    e.claims,
		Retriever: e.retriever,
		TopK:      e.topK,
		Logger:    e.logger,
		Clock:     e.clock,
	})
	if err != nil {
		return nil, err
	}

	e.orchestrator, err = runtime.NewOrchestrator(roster,
		runtime.WithMaxIterations(e.maxIterations),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
		runtime.WithClock(e.clock),
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// TurnRequest carries one user message into the engine.
type TurnRequest struct {
	// SessionID resumes an existing conversation. Empty starts a new one.
	SessionID string

	// Message is the user's utterance. Required.
	Message string

	// Context seeds known facts (policy number, customer id). Values the
	// session has already learned take precedence over these.
	Context map[string]string
}

// Diagnostics reports how a single turn ran.
type Diagnostics struct {
	// Iterations is the number of routing-loop passes this turn took.
	Iterations int

	// AgentsUsed lists the agents visited this turn, in order.
	AgentsUsed []string

	// Elapsed is the wall-clock duration of the turn.
	Elapsed time.Duration
}

// TurnResult is the outcome of one Turn call.
type TurnResult struct {
	SessionID string

	// Agent is the agent that produced the reply: a terminal on completed
	// turns, the asking agent on clarification pauses.
	Agent domain.AgentName

	Reply string

	// NeedsClarification signals the turn paused on a question; the next
	// request with the same SessionID resumes the conversation.
	NeedsClarification bool

	// Complete signals a terminal agent finished the conversation turn.
	Complete bool

	// New reports that this call created the session.
	New bool

	Diagnostics Diagnostics
}

// Turn executes one full routing loop for the given message, under the
// per-session lock. Sessions are created on first use. The session is
// persisted only when the turn ends cleanly (terminal reached or paused for
// clarification); an aborted turn leaves no trace in the store.
func (e *Engine) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &domain.ValidationError{Field: "message", Reason: "must not be empty"}
	}

	id := req.SessionID
	if id == "" {
		id = e.sessions.NewID()
	}

	started := e.clock()
	var result *TurnResult

	err := e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		sess, created, err := session.LoadOrCreate(ctx, e.sessions.Store(), id, started)
		if err != nil {
			return err
		}

		state := &sess.State
		e.seed(state, message, req.Context)

		outcome, err := e.orchestrator.RunTurn(ctx, state)
		if err != nil {
			// Nothing is saved: the caller retries against the
			// session as it was before this turn.
			return err
		}

		now := e.clock()
		for _, name := range outcome.Agents {
			sess.MarkAgent(name)
		}
		sess.Meta.TotalIterations += outcome.Iterations
		sess.Meta.Escalated = sess.Meta.Escalated || state.Flags.RequiresEscalation
		sess.Meta.Completed = state.Flags.Complete
		sess.Meta.UpdatedAt = now

		if err := e.sessions.Store().Save(ctx, sess); err != nil {
			return fmt.Errorf("failed to persist session %s: %w", id, err)
		}

		result = e.assemble(sess, outcome, created, now.Sub(started))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// seed prepares the session state for a fresh turn: per-turn routing and flag
// state is reset, the new input is recorded, and request context is folded in
// without clobbering facts the conversation already established.
func (e *Engine) seed(state *domain.State, message string, reqContext map[string]string) {
	state.Input = message
	state.AddMessage(domain.RoleUser, message, e.clock())

	for key, value := range reqContext {
		if _, known := state.Context[key]; !known {
			state.Context[key] = value
		}
	}

	state.Routing = domain.Routing{}
	// Answering a pending question consumes it; the question itself stays
	// in the transcript for the supervisor's prompt.
	state.Flags.NeedsClarification = false
	state.Flags.Complete = false
	state.Results.FinalAnswer = ""
}

func (e *Engine) assemble(sess *domain.Session, outcome *runtime.Outcome, created bool, elapsed time.Duration) *TurnResult {
	state := &sess.State

	agent := outcome.Terminal
	if outcome.Paused && len(outcome.Agents) > 0 {
		agent = outcome.Agents[len(outcome.Agents)-1]
	}

	reply := state.Results.FinalAnswer
	if outcome.Paused || reply == "" {
		reply = state.LastAssistantText()
	}
	if reply == "" {
		reply = fallbackReply
	}

	used := make([]string, len(outcome.Agents))
	for i, name := range outcome.Agents {
		used[i] = string(name)
	}

	return &TurnResult{
		SessionID:          sess.ID,
		Agent:              agent,
		Reply:              reply,
		NeedsClarification: state.Flags.NeedsClarification,
		Complete:           state.Flags.Complete,
		New:                created,
		Diagnostics: Diagnostics{
			Iterations: outcome.Iterations,
			AgentsUsed: used,
			Elapsed:    elapsed,
		},
	}
}

// Sessions returns the session manager backing the engine, for the session
// management surface (list, inspect, delete, refresh).
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Agents lists the roster in routing order, for introspection tools.
func (e *Engine) Agents() []domain.AgentName {
	names := []domain.AgentName{domain.AgentSupervisor}
	names = append(names, domain.Specialists()...)
	return append(names, domain.AgentEscalation, domain.AgentFinalAnswer)
}

// MaxIterations returns the routing-loop cap per turn.
func (e *Engine) MaxIterations() int {
	return e.orchestrator.MaxIterations()
}
