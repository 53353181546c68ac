package agents

import (
	"context"
	"fmt"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

const finalAnswerFallback = "Thanks for reaching out. Is there anything else I can help you with?"

// FinalAnswer is the terminal that closes a resolved turn: it rewrites the
// last specialist reply as a clean user-facing answer. The transcript stays
// append-only; the rewrite is added, nothing is removed.
type FinalAnswer struct {
	node
}

// NewFinalAnswer builds the resolution terminal.
func NewFinalAnswer(deps Deps) *FinalAnswer {
	return &FinalAnswer{node{deps.normalized()}}
}

func (f *FinalAnswer) Name() domain.AgentName {
	return domain.AgentFinalAnswer
}

func (f *FinalAnswer) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	source := state.LastAssistantText()
	if source == "" {
		source = finalAnswerFallback
	}

	// Verbatim fallback: a resolved turn must produce an answer even when the
	// reasoner cannot polish it.
	summary := f.phrase(ctx, ports.InferenceRequest{
		System: finalAnswerSystemPrompt,
		Prompt: fmt.Sprintf("The user asked: %q\n\nThe specialist's response:\n%s", state.Input, source),
	}, source)

	return domain.Update{
		Complete:    domain.Ptr(true),
		FinalAnswer: domain.Ptr(summary),
		Messages:    []domain.Message{f.message(domain.RoleAssistant, summary)},
	}, nil
}
