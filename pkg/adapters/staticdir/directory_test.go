package staticdir_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard/pkg/adapters/staticdir"
	"github.com/switchyard-ai/switchyard/pkg/domain"
)

func TestDirectory_PolicyLookup(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	policy, err := dir.Policy(ctx, "pol000001") // identifiers are case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "Maria Alvarez", policy.HolderName)
	assert.Equal(t, "CUST100", policy.CustomerID)

	_, err = dir.Policy(ctx, "POL999999")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestDirectory_AutoDetails(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	details, err := dir.AutoDetails(ctx, "POL000001")
	require.NoError(t, err)
	assert.Equal(t, "Corolla", details.VehicleModel)

	// The home policy has no vehicle extension.
	_, err = dir.AutoDetails(ctx, "POL000002")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestDirectory_CurrentBill(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	t.Run("By Policy", func(t *testing.T) {
		bill, err := dir.CurrentBill(ctx, "POL000001", "")
		require.NoError(t, err)
		assert.Equal(t, "BILL2025-0601", bill.ID)
	})

	t.Run("By Customer Picks Latest Open", func(t *testing.T) {
		// CUST100 holds two policies with open bills; the later due date wins.
		bill, err := dir.CurrentBill(ctx, "", "CUST100")
		require.NoError(t, err)
		assert.Equal(t, "POL000001", bill.PolicyNumber)
		assert.Equal(t, "2025-07-01", bill.DueDate)
	})

	t.Run("Overdue Counts As Open", func(t *testing.T) {
		bill, err := dir.CurrentBill(ctx, "POL000004", "")
		require.NoError(t, err)
		assert.Equal(t, "overdue", bill.Status)
	})

	t.Run("Nothing Known", func(t *testing.T) {
		_, err := dir.CurrentBill(ctx, "", "")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

func TestDirectory_Payments(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	payments, err := dir.Payments(ctx, "POL000001")
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, "2025-06-01", payments[0].Date, "most recent first")

	_, err = dir.Payments(ctx, "POL000002")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestDirectory_Claims(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	claim, err := dir.Claim(ctx, "clm1001")
	require.NoError(t, err)
	assert.Equal(t, "under review", claim.Status)

	recent, err := dir.RecentClaims(ctx, "POL000001")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "CLM1001", recent[0].ID, "newest filed first")

	_, err = dir.RecentClaims(ctx, "POL000003")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestDirectory_RecentClaimsLimit(t *testing.T) {
	extra := staticdir.Dataset{
		Claims: []domain.Claim{
			{ID: "CLM9001", PolicyNumber: "POL000001", Type: "theft", Status: "open", FiledDate: "2025-06-10"},
			{ID: "CLM9002", PolicyNumber: "POL000001", Type: "hail", Status: "open", FiledDate: "2025-06-12"},
		},
	}
	dir := staticdir.New(staticdir.WithExtra(extra))

	recent, err := dir.RecentClaims(context.Background(), "POL000001")
	require.NoError(t, err)
	require.Len(t, recent, 3, "recent claims are capped")
	assert.Equal(t, "CLM9002", recent[0].ID)
	assert.Equal(t, "CLM9001", recent[1].ID)
	assert.Equal(t, "CLM1001", recent[2].ID)
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	dir := staticdir.New()
	ctx := context.Background()

	first, err := dir.Policy(ctx, "POL000001")
	require.NoError(t, err)
	first.HolderName = "scribbled over"

	second, err := dir.Policy(ctx, "POL000001")
	require.NoError(t, err)
	assert.Equal(t, "Maria Alvarez", second.HolderName)
}
