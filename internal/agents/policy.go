package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Policy answers coverage and policy-detail questions from the policy
// directory.
type Policy struct {
	node
}

// NewPolicy builds the policy specialist.
func NewPolicy(deps Deps) *Policy {
	return &Policy{node{deps.normalized()}}
}

func (p *Policy) Name() domain.AgentName {
	return domain.AgentPolicy
}

func (p *Policy) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	number := entity(state, domain.ContextPolicyNumber)
	if number == "" {
		return p.clarify("Could you share your policy number? It starts with POL."), nil
	}

	record, err := p.deps.Policies.Policy(ctx, number)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return p.clarify(fmt.Sprintf(
			"I couldn't find a policy numbered %s. Could you double-check the number?", number)), nil
	case err != nil:
		p.deps.Logger.Warn("policy lookup failed", "session_id", state.SessionID, "err", err)
		return p.apology("our policy records"), nil
	}

	update := domain.Update{
		Context: map[string]string{domain.ContextPolicyNumber: record.Number},
		Lookups: map[string]any{"policy": record},
	}
	if record.CustomerID != "" {
		update.Context[domain.ContextCustomerID] = record.CustomerID
	}

	facts := renderPolicy(record)
	if strings.Contains(strings.ToLower(record.Type), "auto") {
		details, err := p.deps.Policies.AutoDetails(ctx, record.Number)
		switch {
		case err == nil:
			update.Lookups["auto_policy"] = details
			facts += "\n" + renderAutoDetails(details)
		case !errors.Is(err, domain.ErrRecordNotFound):
			p.deps.Logger.Warn("auto details lookup failed", "session_id", state.SessionID, "err", err)
		}
	}

	answer := p.phrase(ctx, ports.InferenceRequest{
		System: policySystemPrompt,
		Prompt: specialistPrompt(state, facts),
	}, facts)
	update.Messages = []domain.Message{p.message(domain.RoleAssistant, answer)}
	return update, nil
}

func renderPolicy(p *domain.Policy) string {
	return fmt.Sprintf(
		"Policy %s (%s) held by %s is %s. Premium $%.2f billed %s, effective %s through %s.",
		p.Number, p.Type, p.HolderName, p.Status,
		p.PremiumAmount, p.BillingFrequency, p.EffectiveDate, p.ExpiryDate,
	)
}

func renderAutoDetails(d *domain.AutoPolicyDetails) string {
	collision := "not included"
	if d.CollisionCovered {
		collision = "included"
	}
	return fmt.Sprintf(
		"Covered vehicle: %d %s %s. Deductible $%.2f, collision coverage %s.",
		d.VehicleYear, d.VehicleMake, d.VehicleModel, d.Deductible, collision,
	)
}
