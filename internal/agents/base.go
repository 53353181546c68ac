package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// node carries the behavior shared by every roster member.
type node struct {
	deps Deps
}

func (n node) message(role, text string) domain.Message {
	return domain.Message{Role: role, Text: text, Timestamp: n.deps.Clock()}
}

// clarify pauses the turn with a question for the user.
func (n node) clarify(question string) domain.Update {
	return domain.Update{
		NeedsClarification: domain.Ptr(true),
		Messages:           []domain.Message{n.message(domain.RoleAssistant, question)},
	}
}

// apology converts a collaborator outage into a user-facing answer. The turn
// stays healthy; the supervisor sees the apology like any specialist reply.
func (n node) apology(what string) domain.Update {
	text := fmt.Sprintf(
		"I'm having trouble reaching %s right now. Please try again in a few minutes and I'll pick this back up.",
		what,
	)
	return domain.Update{Messages: []domain.Message{n.message(domain.RoleAssistant, text)}}
}

// phrase asks the reasoner for prose and falls back to canned text when the
// service fails or answers emptily. Specialist answers degrade, never error.
func (n node) phrase(ctx context.Context, req ports.InferenceRequest, fallback string) string {
	inference, err := n.deps.Reasoner.Infer(ctx, req)
	if err != nil {
		n.deps.Logger.Warn("phrasing failed, using canned text", "err", err)
		return fallback
	}
	if text := strings.TrimSpace(inference.Text); text != "" {
		return text
	}
	return fallback
}
