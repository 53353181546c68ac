package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// GeneralHelp answers open questions from the knowledge base: retrieve the
// closest entries, then ground the reply on them.
type GeneralHelp struct {
	node
}

// NewGeneralHelp builds the knowledge-base specialist.
func NewGeneralHelp(deps Deps) *GeneralHelp {
	return &GeneralHelp{node{deps.normalized()}}
}

func (g *GeneralHelp) Name() domain.AgentName {
	return domain.AgentGeneralHelp
}

func (g *GeneralHelp) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	query := strings.TrimSpace(state.Input)
	if query == "" {
		query = state.Routing.Task
	}

	snippets, err := g.deps.Retriever.Search(ctx, query, g.deps.TopK)
	if err != nil {
		g.deps.Logger.Warn("knowledge-base search failed", "session_id", state.SessionID, "err", err)
		return g.apology("our knowledge base"), nil
	}

	if len(snippets) == 0 {
		// The empty non-nil slice records that retrieval ran and came back dry.
		return domain.Update{
			Snippets: []domain.Snippet{},
			Messages: []domain.Message{g.message(domain.RoleAssistant,
				"I couldn't find matching information in our knowledge base for that. "+
					"Could you rephrase the question, or would you like me to connect you with a specialist?")},
		}, nil
	}

	g.deps.Logger.Debug("knowledge-base hits",
		"session_id", state.SessionID, "query", query, "count", len(snippets))

	answer := g.phrase(ctx, ports.InferenceRequest{
		System: generalHelpSystemPrompt,
		Prompt: specialistPrompt(state, renderSnippets(snippets)),
	}, snippets[0].Answer)

	return domain.Update{
		Snippets: snippets,
		Messages: []domain.Message{g.message(domain.RoleAssistant, answer)},
	}, nil
}

func renderSnippets(snippets []domain.Snippet) string {
	var sb strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&sb, "Entry %d (score %.3f)\nQ: %s\nA: %s\n\n", i+1, s.Score, s.Question, s.Answer)
	}
	return strings.TrimRight(sb.String(), "\n")
}
