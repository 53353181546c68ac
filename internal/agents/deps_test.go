package agents_test

import (
	"context"
	"time"

	"github.com/switchyard-ai/switchyard/internal/agents"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// fakeReasoner replays scripted inferences and records every request. The
// last reply repeats once the script runs out.
type fakeReasoner struct {
	requests []ports.InferenceRequest
	replies  []*ports.Inference
	err      error
}

func (f *fakeReasoner) Infer(ctx context.Context, req ports.InferenceRequest) (*ports.Inference, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return &ports.Inference{Text: "ok"}, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakePolicies struct {
	policy  *domain.Policy
	auto    *domain.AutoPolicyDetails
	err     error
	autoErr error
}

func (f *fakePolicies) Policy(ctx context.Context, number string) (*domain.Policy, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.policy == nil || f.policy.Number != number {
		return nil, domain.ErrRecordNotFound
	}
	return f.policy, nil
}

func (f *fakePolicies) AutoDetails(ctx context.Context, number string) (*domain.AutoPolicyDetails, error) {
	if f.autoErr != nil {
		return nil, f.autoErr
	}
	if f.auto == nil || f.auto.Number != number {
		return nil, domain.ErrRecordNotFound
	}
	return f.auto, nil
}

type fakeBilling struct {
	bill        *domain.Bill
	payments    []domain.Payment
	err         error
	paymentsErr error
}

func (f *fakeBilling) CurrentBill(ctx context.Context, policyNumber, customerID string) (*domain.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.bill == nil {
		return nil, domain.ErrRecordNotFound
	}
	return f.bill, nil
}

func (f *fakeBilling) Payments(ctx context.Context, policyNumber string) ([]domain.Payment, error) {
	if f.paymentsErr != nil {
		return nil, f.paymentsErr
	}
	if len(f.payments) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return f.payments, nil
}

type fakeClaims struct {
	claim  *domain.Claim
	recent []domain.Claim
	err    error
}

func (f *fakeClaims) Claim(ctx context.Context, id string) (*domain.Claim, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.claim == nil || f.claim.ID != id {
		return nil, domain.ErrRecordNotFound
	}
	return f.claim, nil
}

func (f *fakeClaims) RecentClaims(ctx context.Context, policyNumber string) ([]domain.Claim, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recent, nil
}

type fakeRetriever struct {
	snippets []domain.Snippet
	err      error
	lastK    int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, k int) ([]domain.Snippet, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

// testEnv bundles the fakes so tests can script one side and inspect another.
type testEnv struct {
	reasoner  *fakeReasoner
	policies  *fakePolicies
	billing   *fakeBilling
	claims    *fakeClaims
	retriever *fakeRetriever
	now       time.Time
}

func newTestEnv() *testEnv {
	return &testEnv{
		reasoner:  &fakeReasoner{},
		policies:  &fakePolicies{},
		billing:   &fakeBilling{},
		claims:    &fakeClaims{},
		retriever: &fakeRetriever{},
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) deps() agents.Deps {
	return agents.Deps{
		Reasoner:  e.reasoner,
		Policies:  e.policies,
		Billing:   e.billing,
		Claims:    e.claims,
		Retriever: e.retriever,
		Clock:     func() time.Time { return e.now },
	}
}

func outage(service string) error {
	return &domain.ExternalError{Service: service, Err: context.DeadlineExceeded}
}
