package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Claims answers claim-status questions from the claims directory. With a
// claim ID it fetches that claim; with only a policy number it reports the
// recent claims filed against the policy.
type Claims struct {
	node
}

// NewClaims builds the claims specialist.
func NewClaims(deps Deps) *Claims {
	return &Claims{node{deps.normalized()}}
}

func (c *Claims) Name() domain.AgentName {
	return domain.AgentClaims
}

func (c *Claims) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	claimID := entity(state, domain.ContextClaimID)
	number := entity(state, domain.ContextPolicyNumber)

	switch {
	case claimID != "":
		return c.byClaimID(ctx, state, claimID)
	case number != "":
		return c.byPolicy(ctx, state, number)
	default:
		return c.clarify("Could you share your claim ID or policy number?"), nil
	}
}

func (c *Claims) byClaimID(ctx context.Context, state *domain.State, claimID string) (domain.Update, error) {
	claim, err := c.deps.Claims.Claim(ctx, claimID)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return c.clarify(fmt.Sprintf(
			"I couldn't find a claim with ID %s. Could you double-check it?", claimID)), nil
	case err != nil:
		c.deps.Logger.Warn("claim lookup failed", "session_id", state.SessionID, "err", err)
		return c.apology("our claims records"), nil
	}

	update := domain.Update{
		Context: map[string]string{domain.ContextClaimID: claim.ID},
		Lookups: map[string]any{"claim": claim},
	}
	if claim.PolicyNumber != "" {
		update.Context[domain.ContextPolicyNumber] = claim.PolicyNumber
	}

	facts := renderClaim(claim)
	answer := c.phrase(ctx, ports.InferenceRequest{
		System: claimsSystemPrompt,
		Prompt: specialistPrompt(state, facts),
	}, facts)
	update.Messages = []domain.Message{c.message(domain.RoleAssistant, answer)}
	return update, nil
}

func (c *Claims) byPolicy(ctx context.Context, state *domain.State, number string) (domain.Update, error) {
	claims, err := c.deps.Claims.RecentClaims(ctx, number)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound), err == nil && len(claims) == 0:
		// An account with no claims is an answer, not a dead end.
		text := fmt.Sprintf("There are no claims filed against policy %s.", number)
		return domain.Update{Messages: []domain.Message{c.message(domain.RoleAssistant, text)}}, nil
	case err != nil:
		c.deps.Logger.Warn("recent claims lookup failed", "session_id", state.SessionID, "err", err)
		return c.apology("our claims records"), nil
	}

	update := domain.Update{
		Lookups: map[string]any{"claims": claims},
	}

	facts := renderClaims(claims)
	answer := c.phrase(ctx, ports.InferenceRequest{
		System: claimsSystemPrompt,
		Prompt: specialistPrompt(state, facts),
	}, facts)
	update.Messages = []domain.Message{c.message(domain.RoleAssistant, answer)}
	return update, nil
}

func renderClaim(c *domain.Claim) string {
	return fmt.Sprintf(
		"Claim %s (%s) on policy %s: status %s, filed %s, amount $%.2f. %s",
		c.ID, c.Type, c.PolicyNumber, c.Status, c.FiledDate, c.Amount, c.Description,
	)
}

func renderClaims(claims []domain.Claim) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent claims (%d):", len(claims))
	for i := range claims {
		sb.WriteString("\n- ")
		sb.WriteString(renderClaim(&claims[i]))
	}
	return sb.String()
}
