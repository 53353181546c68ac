package runtime

import "github.com/switchyard-ai/switchyard/pkg/domain"

// DefaultMaxIterations caps hub visits per turn before a forced escalation.
const DefaultMaxIterations = 3

// RouteKind classifies where a routing decision sends the turn.
type RouteKind int

const (
	// RouteSpecialist dispatches to a worker agent, which returns to the hub.
	RouteSpecialist RouteKind = iota

	// RouteTerminal dispatches to a terminal agent, ending the turn.
	RouteTerminal

	// RoutePause ends the turn cleanly so the user can answer a question.
	RoutePause
)

// Route is the outcome of a routing decision.
type Route struct {
	Kind  RouteKind
	Agent domain.AgentName // empty for RoutePause
}

// preempt applies the rules that outrank any recommendation: a raised
// escalation flag, the iteration cap, and a pending clarification. These
// depend only on flags and the counter, so the hub checks them before
// consulting the reasoner; a preempted visit never burns an inference call.
func preempt(s *domain.State, maxIterations int) (Route, bool) {
	if s.Flags.RequiresEscalation {
		return Route{Kind: RouteTerminal, Agent: domain.AgentEscalation}, true
	}
	if s.Routing.Iterations > maxIterations {
		return Route{Kind: RouteTerminal, Agent: domain.AgentEscalation}, true
	}
	if s.Flags.NeedsClarification {
		return Route{Kind: RoutePause}, true
	}
	return Route{}, false
}

// Decide computes the next hop from the state alone. Precedence: escalation
// flag, iteration cap, pending clarification, then the supervisor's
// recommendation. A recommendation outside the known roster escalates rather
// than guessing.
//
// Decide is pure: same state and cap, same route, no side effects.
func Decide(s *domain.State, maxIterations int) Route {
	if route, ok := preempt(s, maxIterations); ok {
		return route
	}

	next := s.Routing.NextAgent
	switch {
	case next.IsSpecialist():
		return Route{Kind: RouteSpecialist, Agent: next}
	case next == domain.AgentFinalAnswer:
		return Route{Kind: RouteTerminal, Agent: domain.AgentFinalAnswer}
	default:
		// Unknown, empty, or an explicit escalation request: hand to a human.
		return Route{Kind: RouteTerminal, Agent: domain.AgentEscalation}
	}
}
