package agents

import (
	"regexp"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// Identifier shapes of the upstream systems of record: a short prefix and a
// run of digits, optionally hyphen-separated ("POL000004", "clm-1023").
var (
	policyNumberRe = regexp.MustCompile(`(?i)\bPOL-?(\d{3,})\b`)
	claimIDRe      = regexp.MustCompile(`(?i)\bCLM-?(\d{3,})\b`)
	customerIDRe   = regexp.MustCompile(`(?i)\bCUST-?(\d{3,})\b`)
)

// ExtractEntities pulls known identifiers out of free text, normalized to the
// canonical uppercase unhyphenated form. Absent entities are absent keys.
func ExtractEntities(text string) map[string]string {
	entities := make(map[string]string)
	if m := policyNumberRe.FindStringSubmatch(text); m != nil {
		entities[domain.ContextPolicyNumber] = "POL" + m[1]
	}
	if m := claimIDRe.FindStringSubmatch(text); m != nil {
		entities[domain.ContextClaimID] = "CLM" + m[1]
	}
	if m := customerIDRe.FindStringSubmatch(text); m != nil {
		entities[domain.ContextCustomerID] = "CUST" + m[1]
	}
	return entities
}

// entity resolves a context key from the session first, the turn's input
// second. Session context wins: it was either extracted earlier or supplied
// explicitly by the caller.
func entity(state *domain.State, key string) string {
	if v := strings.TrimSpace(state.Context[key]); v != "" {
		return v
	}
	return ExtractEntities(state.Input)[key]
}
