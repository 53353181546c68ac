// Package cli wires configuration into a running engine. The commands under
// cmd/switchyard stay thin: they parse flags, call Build, and hand the
// runtime to an adapter (HTTP, MCP, interactive chat).
package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/internal/config"
	"github.com/switchyard-ai/switchyard/pkg/adapters/memory"
	"github.com/switchyard-ai/switchyard/pkg/adapters/openai"
	redisadapter "github.com/switchyard-ai/switchyard/pkg/adapters/redis"
	"github.com/switchyard-ai/switchyard/pkg/adapters/staticdir"
	"github.com/switchyard-ai/switchyard/pkg/observability"
	"github.com/switchyard-ai/switchyard/pkg/persistence/middleware"
	"github.com/switchyard-ai/switchyard/pkg/ports"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

// Runtime bundles the wired engine with the background pieces the commands
// manage: the metrics registry, the fallback-store sweeper, and whatever
// needs closing on shutdown.
type Runtime struct {
	Engine      *switchyard.Engine
	Registry    *prometheus.Registry
	Metrics     *observability.Metrics
	HTTPMetrics *observability.HTTPMetrics
	Sweeper     *session.Sweeper

	closers []func() error
}

// Close releases backend connections.
func (r *Runtime) Close() error {
	var first error
	for _, fn := range r.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build assembles the full engine from configuration: reasoner client,
// session store stack (Redis with in-process failover when enabled, privacy
// middleware on top), per-session locking, metrics, and the sweeper.
func Build(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Registry: prometheus.NewRegistry()}
	rt.Metrics = observability.NewMetrics(rt.Registry)
	rt.HTTPMetrics = observability.NewHTTPMetrics(rt.Registry)

	stores, err := buildStores(cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.closers = stores.closers
	rt.Sweeper = session.NewSweeper(stores.fallback,
		session.WithSweepInterval(cfg.Session.SweepInterval),
		session.WithSweepLogger(logger),
	)

	manager, err := buildManager(cfg, logger, stores)
	if err != nil {
		return nil, err
	}

	reasonerOpts := []openai.Option{
		openai.WithModel(cfg.Reasoner.Model),
		openai.WithMaxRetries(cfg.Reasoner.MaxRetries),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Reasoner.Timeout}),
		openai.WithLogger(logger),
	}
	if cfg.Reasoner.BaseURL != "" {
		reasonerOpts = append(reasonerOpts, openai.WithBaseURL(cfg.Reasoner.BaseURL))
	}
	reasoner := openai.New(cfg.Reasoner.APIKey, reasonerOpts...)

	opts := []switchyard.Option{
		switchyard.WithReasoner(reasoner),
		switchyard.WithSessions(manager),
		switchyard.WithMaxIterations(cfg.Routing.MaxIterations),
		switchyard.WithTopK(cfg.Retrieval.TopK),
		switchyard.WithLogger(logger),
		switchyard.WithHooks(rt.Metrics.Hooks()),
	}

	if cfg.Retrieval.FixturesDir != "" {
		ds, err := staticdir.LoadDir(cfg.Retrieval.FixturesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures from %s: %w", cfg.Retrieval.FixturesDir, err)
		}
		dir := staticdir.FromDataset(*ds)
		opts = append(opts,
			switchyard.WithDirectories(dir, dir, dir),
			switchyard.WithRetriever(staticdir.NewRetriever(ds.FAQs)),
		)
	}

	engine, err := switchyard.New(opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Engine = engine
	return rt, nil
}

// storeStack is the assembled persistence layer plus the pieces the runtime
// needs to reference directly.
type storeStack struct {
	store    ports.SessionStore
	fallback *memory.Store
	locker   ports.DistributedLocker
	closers  []func() error
}

func buildStores(cfg config.Config, logger *slog.Logger) (*storeStack, error) {
	stack := &storeStack{fallback: memory.NewStore(memory.WithTTL(cfg.Session.TTL))}
	stack.store = stack.fallback

	if cfg.Redis.Enabled {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		stack.closers = append(stack.closers, client.Close)

		durable := redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.Session.TTL))
		stack.store = session.NewFailover(durable, stack.fallback,
			session.WithFailoverLogger(logger),
		)
		stack.locker = redisadapter.NewLocker(client, "switchyard:lock")
	}

	mws, err := privacyMiddlewares(cfg.Privacy)
	if err != nil {
		return nil, err
	}
	stack.store = middleware.Chain(stack.store, mws...)
	return stack, nil
}

// privacyMiddlewares validates the privacy config and returns the store
// wrappers in at-rest order: masking happens before encryption.
func privacyMiddlewares(cfg config.Privacy) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if len(cfg.MaskPatterns) > 0 {
		for _, p := range cfg.MaskPatterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid privacy.mask_patterns entry %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(cfg.MaskPatterns))
	}

	if cfg.EncryptionKey != "" {
		active, err := decodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid privacy.encryption_key: %w", err)
		}
		fallbacks := make([][]byte, 0, len(cfg.FallbackKeys))
		for _, raw := range cfg.FallbackKeys {
			key, err := decodeKey(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid privacy.fallback_keys entry: %w", err)
			}
			fallbacks = append(fallbacks, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}

	return mws, nil
}

func decodeKey(raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes after base64 decoding, got %d", len(key))
	}
	return key, nil
}

func buildManager(cfg config.Config, logger *slog.Logger, stores *storeStack) (*session.Manager, error) {
	var policy session.ConflictPolicy
	switch cfg.Session.ConflictPolicy {
	case "", string(session.Wait):
		policy = session.Wait
	case string(session.Reject):
		policy = session.Reject
	default:
		return nil, fmt.Errorf("unknown session.conflict_policy %q (want wait or reject)", cfg.Session.ConflictPolicy)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithConflictPolicy(policy),
		session.WithLockTTL(cfg.Session.LockTTL),
	}
	if stores.locker != nil {
		opts = append(opts, session.WithLocker(stores.locker))
	}
	return session.NewManager(stores.store, opts...), nil
}

// BuildStore assembles only the persistence layer, for session management
// commands that never run a turn (and so need no reasoner key).
func BuildStore(cfg config.Config, logger *slog.Logger) (ports.SessionStore, func() error, error) {
	stores, err := buildStores(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() error {
		var first error
		for _, fn := range stores.closers {
			if err := fn(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return stores.store, closer, nil
}
