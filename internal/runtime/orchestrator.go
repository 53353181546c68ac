// Package runtime drives the routing loop: a hub node deciding, specialist
// nodes working, terminal nodes closing the turn. The loop's structure is a
// static property of the roster, not of any configuration.
package runtime

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Orchestrator runs turns over a fixed roster of agents. It owns the state
// for the duration of a turn: agents only ever see it through Process and
// answer with partial updates.
type Orchestrator struct {
	nodes         map[domain.AgentName]ports.AgentNode
	maxIterations int
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	clock         func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithMaxIterations sets the hub-visit cap per turn.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// NewOrchestrator builds the loop over the given roster. The roster must
// contain the hub, every specialist, and both terminals, exactly once each;
// routing is a closed table, so a hole here is a construction error, not a
// runtime surprise.
func NewOrchestrator(roster []ports.AgentNode, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		nodes:         make(map[domain.AgentName]ports.AgentNode, len(roster)),
		maxIterations: DefaultMaxIterations,
		logger:        logging.NewNop(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	for _, node := range roster {
		name := node.Name()
		if _, dup := o.nodes[name]; dup {
			return nil, fmt.Errorf("duplicate agent %q in roster", name)
		}
		o.nodes[name] = node
	}

	required := append([]domain.AgentName{domain.AgentSupervisor}, domain.Specialists()...)
	required = append(required, domain.AgentEscalation, domain.AgentFinalAnswer)
	for _, name := range required {
		if _, ok := o.nodes[name]; !ok {
			return nil, fmt.Errorf("roster is missing agent %q", name)
		}
	}
	return o, nil
}

// MaxIterations returns the configured hub-visit cap.
func (o *Orchestrator) MaxIterations() int {
	return o.maxIterations
}

// Outcome describes how a turn ended.
type Outcome struct {
	// Terminal names the agent that closed the turn. Empty when paused.
	Terminal domain.AgentName

	// Paused reports a clean stop awaiting user clarification.
	Paused bool

	// Agents is the execution order, repeats included.
	Agents []domain.AgentName

	// Iterations is the final hub-visit count of the turn.
	Iterations int
}

// RunTurn advances the state until a terminal closes it or a clarification
// pauses it. The caller seeds the state (input, per-turn counter reset)
// beforehand and persists it afterwards; an error here means the turn aborted
// and nothing should be persisted.
func (o *Orchestrator) RunTurn(ctx context.Context, state *domain.State) (*Outcome, error) {
	started := o.clock()
	outcome := &Outcome{}

	fail := func(err error) (*Outcome, error) {
		o.emitTurnEnd(ctx, state, outcome, started, err)
		return nil, err
	}

	current := domain.AgentSupervisor
	for {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("turn aborted: %w", err))
		}

		if current == domain.AgentSupervisor {
			state.Routing.Iterations++
			if route, ok := preempt(state, o.maxIterations); ok {
				if route.Kind == RoutePause {
					outcome.Paused = true
					outcome.Iterations = state.Routing.Iterations
					o.emitTurnEnd(ctx, state, outcome, started, nil)
					return outcome, nil
				}
				o.logger.Debug("routing preempted",
					"session_id", state.SessionID,
					"iteration", state.Routing.Iterations,
					"agent", route.Agent,
				)
				current = route.Agent
				continue
			}
		}

		node := o.nodes[current]
		if err := o.process(ctx, node, state, outcome); err != nil {
			return fail(err)
		}

		if current.IsTerminal() {
			outcome.Terminal = current
			outcome.Iterations = state.Routing.Iterations
			o.emitTurnEnd(ctx, state, outcome, started, nil)
			return outcome, nil
		}

		if current == domain.AgentSupervisor {
			route := Decide(state, o.maxIterations)
			switch route.Kind {
			case RoutePause:
				outcome.Paused = true
				outcome.Iterations = state.Routing.Iterations
				o.emitTurnEnd(ctx, state, outcome, started, nil)
				return outcome, nil
			default:
				current = route.Agent
			}
			continue
		}

		// Specialists always hand control back to the hub.
		current = domain.AgentSupervisor
	}
}

// process runs one node and merges its update into the state.
func (o *Orchestrator) process(ctx context.Context, node ports.AgentNode, state *domain.State, outcome *Outcome) error {
	name := node.Name()
	outcome.Agents = append(outcome.Agents, name)

	o.emitAgent(ctx, o.hooks.OnAgentEnter, domain.EventAgentEnter, state, name)

	update, err := node.Process(ctx, state)
	if err != nil {
		return fmt.Errorf("agent %s failed: %w", name, err)
	}
	state.Apply(update)

	o.emitAgent(ctx, o.hooks.OnAgentLeave, domain.EventAgentLeave, state, name)
	return nil
}

func (o *Orchestrator) emitAgent(ctx context.Context, hook func(context.Context, *domain.AgentEvent), kind domain.EventType, state *domain.State, name domain.AgentName) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.AgentEvent{
		EventBase: domain.EventBase{
			Timestamp: o.clock(),
			Type:      kind,
			SessionID: state.SessionID,
		},
		Agent:     name,
		Iteration: state.Routing.Iterations,
	})
}

func (o *Orchestrator) emitTurnEnd(ctx context.Context, state *domain.State, outcome *Outcome, started time.Time, err error) {
	if o.hooks.OnTurnEnd == nil {
		return
	}
	event := &domain.TurnEvent{
		EventBase: domain.EventBase{
			Timestamp: o.clock(),
			Type:      domain.EventTurnEnd,
			SessionID: state.SessionID,
		},
		Terminal: outcome.Terminal,
		Paused:   outcome.Paused,
		Agents:   outcome.Agents,
		Duration: o.clock().Sub(started),
	}
	if err != nil {
		event.Err = err.Error()
	}
	o.hooks.OnTurnEnd(ctx, event)
}
