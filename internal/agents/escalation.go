package agents

import (
	"context"
	"fmt"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

const escalationFallback = "I understand. I'm connecting you with a human support specialist " +
	"who will review this conversation and follow up with you shortly."

// Escalation is the terminal that hands the conversation to a human. It
// acknowledges, marks the session escalated, and ends the turn. A terminal
// never fails the turn; when the reasoner is down the handoff text is canned.
type Escalation struct {
	node
}

// NewEscalation builds the escalation terminal.
func NewEscalation(deps Deps) *Escalation {
	return &Escalation{node{deps.normalized()}}
}

func (e *Escalation) Name() domain.AgentName {
	return domain.AgentEscalation
}

func (e *Escalation) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	e.deps.Logger.Info("escalating to human support",
		"session_id", state.SessionID, "iterations", state.Routing.Iterations)

	text := e.phrase(ctx, ports.InferenceRequest{
		System: escalationSystemPrompt,
		Prompt: fmt.Sprintf("Task: %s\n\nConversation:\n%s", taskLine(state), transcript(state)),
	}, escalationFallback)

	return domain.Update{
		RequiresEscalation: domain.Ptr(true),
		Complete:           domain.Ptr(true),
		FinalAnswer:        domain.Ptr(text),
		Messages:           []domain.Message{e.message(domain.RoleAssistant, text)},
	}, nil
}
