package staticdir

import (
	"context"
	"sort"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// recentClaimsLimit caps RecentClaims the way the upstream system does.
const recentClaimsLimit = 3

// Directory indexes a Dataset and serves the three directory ports. Lookups
// are case-insensitive on identifiers and return copies, never fixture
// references. All methods are safe for concurrent use: the indexes are built
// once and never mutated.
type Directory struct {
	policies map[string]domain.Policy
	auto     map[string]domain.AutoPolicyDetails
	bills    map[string][]domain.Bill // by policy number
	byOwner  map[string][]string      // customer ID -> policy numbers
	payments map[string][]domain.Payment
	claims   map[string]domain.Claim
	filed    map[string][]domain.Claim // by policy number
}

var (
	_ ports.PolicyDirectory  = (*Directory)(nil)
	_ ports.BillingDirectory = (*Directory)(nil)
	_ ports.ClaimsDirectory  = (*Directory)(nil)
)

// Option configures the Directory.
type Option func(*Dataset)

// WithDataset replaces the default dataset.
func WithDataset(ds Dataset) Option {
	return func(target *Dataset) { *target = ds }
}

// WithExtra merges additional records on top of the current dataset.
func WithExtra(ds Dataset) Option {
	return func(target *Dataset) { target.merge(ds) }
}

// New builds a Directory over the default dataset, unless options replace it.
func New(opts ...Option) *Directory {
	ds := DefaultDataset()
	for _, opt := range opts {
		opt(&ds)
	}
	return FromDataset(ds)
}

// FromDataset builds a Directory over an explicit dataset.
func FromDataset(ds Dataset) *Directory {
	d := &Directory{
		policies: make(map[string]domain.Policy, len(ds.Policies)),
		auto:     make(map[string]domain.AutoPolicyDetails, len(ds.AutoPolicies)),
		bills:    make(map[string][]domain.Bill),
		byOwner:  make(map[string][]string),
		payments: make(map[string][]domain.Payment, len(ds.Payments)),
		claims:   make(map[string]domain.Claim, len(ds.Claims)),
		filed:    make(map[string][]domain.Claim),
	}

	for _, p := range ds.Policies {
		key := canon(p.Number)
		d.policies[key] = p
		if p.CustomerID != "" {
			owner := canon(p.CustomerID)
			d.byOwner[owner] = append(d.byOwner[owner], key)
		}
	}
	for _, a := range ds.AutoPolicies {
		d.auto[canon(a.Number)] = a
	}
	for _, b := range ds.Bills {
		key := canon(b.PolicyNumber)
		d.bills[key] = append(d.bills[key], b)
	}
	for number, list := range ds.Payments {
		cp := make([]domain.Payment, len(list))
		copy(cp, list)
		// Most recent first, as the port promises.
		sort.Slice(cp, func(i, j int) bool { return cp[i].Date > cp[j].Date })
		d.payments[canon(number)] = cp
	}
	for _, c := range ds.Claims {
		d.claims[canon(c.ID)] = c
		key := canon(c.PolicyNumber)
		d.filed[key] = append(d.filed[key], c)
	}
	for key := range d.filed {
		list := d.filed[key]
		sort.Slice(list, func(i, j int) bool { return list[i].FiledDate > list[j].FiledDate })
		d.filed[key] = list
	}
	return d
}

func canon(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Policy fetches a policy by number.
func (d *Directory) Policy(ctx context.Context, number string) (*domain.Policy, error) {
	p, ok := d.policies[canon(number)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := p
	return &cp, nil
}

// AutoDetails fetches the vehicle extension of an auto policy.
func (d *Directory) AutoDetails(ctx context.Context, number string) (*domain.AutoPolicyDetails, error) {
	a, ok := d.auto[canon(number)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := a
	return &cp, nil
}

// CurrentBill returns the open bill for the policy, or the most recent open
// bill across the customer's policies when only the customer is known.
func (d *Directory) CurrentBill(ctx context.Context, policyNumber, customerID string) (*domain.Bill, error) {
	var candidates []domain.Bill
	switch {
	case strings.TrimSpace(policyNumber) != "":
		candidates = d.bills[canon(policyNumber)]
	case strings.TrimSpace(customerID) != "":
		for _, number := range d.byOwner[canon(customerID)] {
			candidates = append(candidates, d.bills[number]...)
		}
	default:
		return nil, domain.ErrRecordNotFound
	}

	var best *domain.Bill
	for i := range candidates {
		b := candidates[i]
		if !openBill(b.Status) {
			continue
		}
		if best == nil || b.DueDate > best.DueDate {
			best = &b
		}
	}
	if best == nil {
		return nil, domain.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func openBill(status string) bool {
	switch strings.ToLower(status) {
	case "pending", "overdue":
		return true
	}
	return false
}

// Payments lists historical payments for a policy, most recent first.
func (d *Directory) Payments(ctx context.Context, policyNumber string) ([]domain.Payment, error) {
	list, ok := d.payments[canon(policyNumber)]
	if !ok || len(list) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	cp := make([]domain.Payment, len(list))
	copy(cp, list)
	return cp, nil
}

// Claim fetches a claim by ID.
func (d *Directory) Claim(ctx context.Context, id string) (*domain.Claim, error) {
	c, ok := d.claims[canon(id)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := c
	return &cp, nil
}

// RecentClaims lists the newest claims filed against a policy.
func (d *Directory) RecentClaims(ctx context.Context, policyNumber string) ([]domain.Claim, error) {
	list := d.filed[canon(policyNumber)]
	if len(list) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	if len(list) > recentClaimsLimit {
		list = list[:recentClaimsLimit]
	}
	cp := make([]domain.Claim, len(list))
	copy(cp, list)
	return cp, nil
}
