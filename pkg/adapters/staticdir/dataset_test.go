package staticdir_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard/pkg/adapters/staticdir"
)

func TestDecodeDataset(t *testing.T) {
	raw := map[string]any{
		"policies": []any{
			map[string]any{
				"policy_number":  "POL777",
				"customer_id":    "CUST777",
				"holder_name":    "Avery Chen",
				"policy_type":    "auto",
				"status":         "active",
				"premium_amount": 99, // whole number decodes into the float field
			},
		},
		"faqs": []any{
			map[string]any{"question": "Q?", "answer": "A."},
		},
	}

	ds, err := staticdir.DecodeDataset(raw)
	require.NoError(t, err)

	require.Len(t, ds.Policies, 1)
	assert.Equal(t, "POL777", ds.Policies[0].Number)
	assert.Equal(t, "Avery Chen", ds.Policies[0].HolderName)
	assert.Equal(t, 99.0, ds.Policies[0].PremiumAmount)
	require.Len(t, ds.FAQs, 1)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	policies := `{"policies": [{"policy_number": "POL111", "customer_id": "CUST1", "holder_name": "A", "policy_type": "home", "status": "active"}]}`
	claims := `{"claims": [{"claim_id": "CLM111", "policy_number": "POL111", "claim_type": "fire", "status": "open", "filed_date": "2025-06-01"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-policies.json"), []byte(policies), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-claims.json"), []byte(claims), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	ds, err := staticdir.LoadDir(dir)
	require.NoError(t, err)

	directory := staticdir.FromDataset(*ds)
	policy, err := directory.Policy(context.Background(), "POL111")
	require.NoError(t, err)
	assert.Equal(t, "home", policy.Type)

	claim, err := directory.Claim(context.Background(), "CLM111")
	require.NoError(t, err)
	assert.Equal(t, "fire", claim.Type)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := staticdir.LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDir_MalformedFixture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := staticdir.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}
