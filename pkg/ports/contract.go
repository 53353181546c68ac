package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests verifying that a SessionStore
// implementation adheres to the interface contract. Backend-specific behavior
// (TTL expiry mechanics, ordering under a forced clock) stays in the adapter's
// own tests.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	base := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load Round Trip", func(t *testing.T) {
		id := base + "-roundtrip"
		sess := domain.NewSession(id, time.Now().UTC().Truncate(time.Second))
		sess.State.Input = "what is my deductible"
		sess.State.AddMessage(domain.RoleUser, "what is my deductible", sess.Meta.CreatedAt)
		sess.State.Context["policy_number"] = "POL1001"
		sess.State.Routing = domain.Routing{NextAgent: domain.AgentPolicy, Task: "lookup deductible", Iterations: 1}
		sess.State.Flags.NeedsClarification = true
		sess.State.Results.Snippets = []domain.Snippet{}
		sess.MarkAgent(domain.AgentSupervisor)
		sess.Meta.TotalIterations = 1

		require.NoError(t, store.Save(ctx, sess), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.State.Messages, loaded.State.Messages)
		assert.Equal(t, sess.State.Context, loaded.State.Context)
		assert.Equal(t, sess.State.Routing, loaded.State.Routing)
		assert.Equal(t, sess.State.Flags, loaded.State.Flags)
		assert.Equal(t, sess.Meta.AgentsUsed, loaded.Meta.AgentsUsed)
		assert.Equal(t, sess.Meta.TotalIterations, loaded.Meta.TotalIterations)
		assert.NotNil(t, loaded.State.Results.Snippets, "empty retrieval result must survive persistence as non-nil")
		assert.Len(t, loaded.State.Results.Snippets, 0)

		_ = store.Delete(ctx, id)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+base)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := base + "-delete"
		require.NoError(t, store.Save(ctx, domain.NewSession(id, time.Now())))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, id), "deleting an absent session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := base + "-list-1"
		id2 := base + "-list-2"
		s1 := domain.NewSession(id1, time.Now())
		s1.State.AddMessage(domain.RoleUser, "hello", time.Now())
		require.NoError(t, store.Save(ctx, s1))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, time.Now())))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		summaries, err := store.List(ctx, 0)
		require.NoError(t, err)

		byID := make(map[string]domain.Summary, len(summaries))
		for _, s := range summaries {
			byID[s.ID] = s
		}
		require.Contains(t, byID, id1)
		require.Contains(t, byID, id2)
		assert.Equal(t, 1, byID[id1].MessageCount)

		limited, err := store.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Refresh Non-Existent", func(t *testing.T) {
		err := store.Refresh(ctx, "non-existent-"+base)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
