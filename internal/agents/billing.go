package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Billing answers bill, premium, and payment questions from the billing
// directory.
type Billing struct {
	node
}

// NewBilling builds the billing specialist.
func NewBilling(deps Deps) *Billing {
	return &Billing{node{deps.normalized()}}
}

func (b *Billing) Name() domain.AgentName {
	return domain.AgentBilling
}

func (b *Billing) Process(ctx context.Context, state *domain.State) (domain.Update, error) {
	number := entity(state, domain.ContextPolicyNumber)
	customer := entity(state, domain.ContextCustomerID)
	if number == "" && customer == "" {
		return b.clarify("Could you share your policy number or customer ID?"), nil
	}

	bill, err := b.deps.Billing.CurrentBill(ctx, number, customer)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return b.clarify(
			"I couldn't find any billing records for that account. Could you double-check the policy number or customer ID?"), nil
	case err != nil:
		b.deps.Logger.Warn("billing lookup failed", "session_id", state.SessionID, "err", err)
		return b.apology("our billing records"), nil
	}

	update := domain.Update{
		Lookups: map[string]any{"bill": bill},
	}
	if bill.PolicyNumber != "" {
		// A lookup by customer ID also pins down the policy for later turns.
		update.Context = map[string]string{domain.ContextPolicyNumber: bill.PolicyNumber}
	}

	facts := renderBill(bill)
	if bill.PolicyNumber != "" {
		payments, err := b.deps.Billing.Payments(ctx, bill.PolicyNumber)
		switch {
		case err == nil && len(payments) > 0:
			update.Lookups["payments"] = payments
			facts += "\n" + renderPayments(payments)
		case err != nil && !errors.Is(err, domain.ErrRecordNotFound):
			b.deps.Logger.Warn("payment history lookup failed", "session_id", state.SessionID, "err", err)
		}
	}

	answer := b.phrase(ctx, ports.InferenceRequest{
		System: billingSystemPrompt,
		Prompt: specialistPrompt(state, facts),
	}, facts)
	update.Messages = []domain.Message{b.message(domain.RoleAssistant, answer)}
	return update, nil
}

func renderBill(b *domain.Bill) string {
	return fmt.Sprintf(
		"The current bill for policy %s is $%.2f, due %s, status %s.",
		b.PolicyNumber, b.AmountDue, b.DueDate, b.Status,
	)
}

func renderPayments(payments []domain.Payment) string {
	var sb strings.Builder
	sb.WriteString("Recent payments:")
	for _, p := range payments {
		fmt.Fprintf(&sb, "\n- %s: $%.2f via %s (%s)", p.Date, p.Amount, p.Method, p.Status)
	}
	return sb.String()
}
