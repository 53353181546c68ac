package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Supervisor is the hub. It understands the request, harvests identifiers
// from the input, and either routes to a specialist or asks the user for the
// one thing that is missing.
type Supervisor struct {
	node
}

// NewSupervisor builds the hub agent.
func NewSupervisor(deps Deps) *Supervisor {
	return &Supervisor{node{deps.normalized()}}
}

func (s *Supervisor) Name() domain.AgentName {
	return domain.AgentSupervisor
}

// Process decides the next hop. Unlike the specialists, a reasoner failure
// here is returned: the hub cannot route blind, and the caller treats the
// turn as aborted and retryable.
func (s *Supervisor) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	update := domain.Update{}
	if entities := ExtractEntities(state.Input); len(entities) > 0 {
		s.deps.Logger.Debug("entities extracted", "session_id", state.SessionID, "entities", entities)
		update.Context = entities
	}

	inference, err := s.deps.Reasoner.Infer(ctx, ports.InferenceRequest{
		System:       supervisorSystemPrompt,
		Prompt:       fmt.Sprintf("Conversation:\n%s\n\nCurrent request: %s", transcript(state), state.Input),
		Context:      knownContext(state, update.Context),
		WantDecision: true,
	})
	if err != nil {
		return domain.Update{}, fmt.Errorf("supervisor inference: %w", err)
	}

	if question := strings.TrimSpace(inference.Question); question != "" {
		s.deps.Logger.Info("supervisor asking for clarification",
			"session_id", state.SessionID, "question", question)
		update.NeedsClarification = domain.Ptr(true)
		update.Messages = append(update.Messages, s.message(domain.RoleAssistant, question))
		return update, nil
	}

	name, known := domain.ParseAgentName(inference.NextAgent)
	if !known {
		// Leave the raw value in place; the routing table escalates anything
		// it does not recognize.
		s.deps.Logger.Warn("unrecognized routing recommendation",
			"session_id", state.SessionID, "next_agent", inference.NextAgent)
		name = domain.AgentName(strings.TrimSpace(inference.NextAgent))
	}

	task := strings.TrimSpace(inference.Task)
	if task == "" {
		task = "Assist the user with their query."
	}

	s.deps.Logger.Info("supervisor decision",
		"session_id", state.SessionID,
		"iteration", state.Routing.Iterations,
		"next_agent", name,
		"task", task,
		"reason", inference.Reason,
	)

	update.NextAgent = domain.Ptr(name)
	update.Task = domain.Ptr(task)
	update.Messages = append(update.Messages,
		s.message(domain.RoleSystem, fmt.Sprintf("Routing to %s: %s", name, task)))
	return update, nil
}

// knownContext merges the session's context with entities extracted this
// visit, so the reasoner never asks for an identifier it already has.
func knownContext(state *domain.State, extracted map[string]string) map[string]string {
	merged := make(map[string]string, len(state.Context)+len(extracted))
	for k, v := range state.Context {
		merged[k] = v
	}
	for k, v := range extracted {
		merged[k] = v
	}
	return merged
}
