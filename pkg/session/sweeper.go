package session

import (
	"context"
	"time"

	"log/slog"

	"github.com/switchyard-ai/switchyard/internal/logging"
)

// DefaultSweepInterval is how often the sweeper scans for expired sessions.
// The durable store expires entries natively; this cadence only governs how
// long dead fallback entries linger, so it can be generous.
const DefaultSweepInterval = time.Hour

// Evictable is a store that can drop its expired entries on demand. The
// in-process store implements it; the durable store does not need to.
type Evictable interface {
	EvictExpired(now time.Time) int
}

// Sweeper periodically evicts expired sessions from an in-process store. It
// never blocks foreground work: eviction runs on its own goroutine and the
// store treats expired entries as absent even before they are swept.
type Sweeper struct {
	target   Evictable
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
	onSweep  func(evicted int)
}

// SweeperOption configures the sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets the scan cadence.
func WithSweepInterval(interval time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.interval = interval
	}
}

// WithSweepClock overrides the time source.
func WithSweepClock(clock func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

// WithSweepLogger configures a logger for sweep results.
func WithSweepLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// OnSweep registers a callback invoked after every sweep with the eviction
// count. Metrics hang off this.
func OnSweep(fn func(evicted int)) SweeperOption {
	return func(s *Sweeper) {
		s.onSweep = fn
	}
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(target Evictable, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		target:   target,
		interval: DefaultSweepInterval,
		clock:    time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on every tick until the context is canceled. It blocks; callers
// start it on its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("session sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	evicted := s.target.EvictExpired(s.clock())
	if evicted > 0 {
		s.logger.Info("evicted expired sessions", "count", evicted)
	}
	if s.onSweep != nil {
		s.onSweep(evicted)
	}
}
