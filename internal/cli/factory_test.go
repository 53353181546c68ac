package cli

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard/internal/config"
	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
)

func TestBuildDefaults(t *testing.T) {
	rt, err := Build(config.Default(), logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Engine)
	assert.NotNil(t, rt.Sweeper)
	assert.Equal(t, 3, rt.Engine.MaxIterations())

	// Collectors registered without panicking; a second Build gets its own
	// registry, so no duplicate-registration collision either.
	rt2, err := Build(config.Default(), logging.NewNop())
	require.NoError(t, err)
	rt2.Close()
}

func TestBuildWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = mr.Addr()

	rt, err := Build(cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	// Saves land in Redis through the failover stack.
	sess := domain.NewSession("factory-redis", time.Now())
	require.NoError(t, rt.Engine.Sessions().Save(context.Background(), sess))
	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.True(t, strings.HasPrefix(keys[0], "switchyard:"), "got keys %v", keys)
}

func TestBuildRejectsBadConflictPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Session.ConflictPolicy = "drop"

	_, err := Build(cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict_policy")
}

func TestBuildRejectsBadPrivacyConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Privacy.MaskPatterns = []string{"("}
	_, err := Build(cfg, logging.NewNop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Privacy.EncryptionKey = "not base64!"
	_, err = Build(cfg, logging.NewNop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Privacy.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err = Build(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestBuildStoreAppliesPrivacyMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Privacy.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
	cfg.Privacy.MaskPatterns = []string{"customer_id"}

	store, closer, err := BuildStore(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closer()

	ctx := context.Background()
	sess := domain.NewSession("privacy-1", time.Now())
	sess.State.Context["customer_id"] = "CUST-000042"
	sess.State.Context["policy_number"] = "POL-000001"
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "privacy-1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.State.Context["customer_id"])
	assert.Equal(t, "POL-000001", loaded.State.Context["policy_number"])
}
