package ports

import (
	"context"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// Directory ports wrap the systems of record. Lookups that match nothing
// return domain.ErrRecordNotFound; transport failures return
// *domain.ExternalError.

// PolicyDirectory serves policy master records.
type PolicyDirectory interface {
	// Policy fetches a policy by number.
	Policy(ctx context.Context, number string) (*domain.Policy, error)

	// AutoDetails fetches the vehicle extension of an auto policy.
	AutoDetails(ctx context.Context, number string) (*domain.AutoPolicyDetails, error)
}

// BillingDirectory serves invoices and payment history.
type BillingDirectory interface {
	// CurrentBill fetches the open bill for a policy, or the most recent one
	// for the customer when the policy number is unknown.
	CurrentBill(ctx context.Context, policyNumber, customerID string) (*domain.Bill, error)

	// Payments lists historical payments for a policy, most recent first.
	Payments(ctx context.Context, policyNumber string) ([]domain.Payment, error)
}

// ClaimsDirectory serves filed claims.
type ClaimsDirectory interface {
	// Claim fetches a claim by ID.
	Claim(ctx context.Context, id string) (*domain.Claim, error)

	// RecentClaims lists claims filed against a policy, most recent first.
	RecentClaims(ctx context.Context, policyNumber string) ([]domain.Claim, error)
}
