package agents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/switchyard-ai/switchyard/internal/agents"
	"github.com/switchyard-ai/switchyard/pkg/domain"
)

func TestExtractEntities(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "Policy Number",
			input: "What does my policy POL000004 cover?",
			want:  map[string]string{domain.ContextPolicyNumber: "POL000004"},
		},
		{
			name:  "Lowercase And Hyphenated",
			input: "status of claim clm-1023 please",
			want:  map[string]string{domain.ContextClaimID: "CLM1023"},
		},
		{
			name:  "All Three",
			input: "I'm CUST889, policy POL123 and claim CLM456 are mine",
			want: map[string]string{
				domain.ContextCustomerID:   "CUST889",
				domain.ContextPolicyNumber: "POL123",
				domain.ContextClaimID:      "CLM456",
			},
		},
		{
			name:  "Nothing",
			input: "When is my premium due?",
			want:  map[string]string{},
		},
		{
			name:  "Embedded Word Ignored",
			input: "the INTERPOL123 report", // no word boundary before POL
			want:  map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, agents.ExtractEntities(tc.input))
		})
	}
}
