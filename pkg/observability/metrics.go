// Package observability bridges engine lifecycle events into Prometheus
// collectors and instruments the HTTP surface. Hook-based, so the core engine
// stays metrics-free.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// Turn outcome labels.
const (
	OutcomeAborted = "aborted"
	OutcomePaused  = "paused"
)

// Metrics holds the engine-side collectors. Feed it to an Engine via Hooks().
type Metrics struct {
	agentVisits    *prometheus.CounterVec
	turns          *prometheus.CounterVec
	turnDuration   prometheus.Histogram
	turnIterations prometheus.Histogram
}

// NewMetrics builds and registers the engine collectors. A nil registerer
// falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		agentVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_agent_visits_total",
				Help: "Total number of agent visits",
			},
			[]string{"agent"},
		),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchyard_turns_total",
				Help: "Total number of turns by outcome (terminal agent, paused, or aborted)",
			},
			[]string{"outcome"},
		),
		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "switchyard_turn_duration_seconds",
				Help:    "Wall-clock duration of a full routing turn",
				Buckets: prometheus.DefBuckets,
			},
		),
		turnIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "switchyard_turn_iterations",
				Help:    "Routing-loop passes per turn",
				Buckets: prometheus.LinearBuckets(1, 1, 6),
			},
		),
	}
	reg.MustRegister(m.agentVisits, m.turns, m.turnDuration, m.turnIterations)
	return m
}

// Hooks returns lifecycle callbacks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAgentEnter: func(_ context.Context, e *domain.AgentEvent) {
			m.agentVisits.WithLabelValues(string(e.Agent)).Inc()
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(outcome(e)).Inc()
			m.turnDuration.Observe(e.Duration.Seconds())

			iterations := 0
			for _, agent := range e.Agents {
				if agent == domain.AgentSupervisor {
					iterations++
				}
			}
			if iterations > 0 {
				m.turnIterations.Observe(float64(iterations))
			}
		},
	}
}

// outcome folds a turn event onto one label value: the terminal agent's name
// for completed turns, otherwise paused or aborted.
func outcome(e *domain.TurnEvent) string {
	switch {
	case e.Err != "":
		return OutcomeAborted
	case e.Paused:
		return OutcomePaused
	default:
		return string(e.Terminal)
	}
}

// JoinHooks fans one set of lifecycle events out to several consumers, so
// metrics and logging hooks can share the engine's single hook slot.
func JoinHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAgentEnter: func(ctx context.Context, e *domain.AgentEvent) {
			for _, h := range hooks {
				if h.OnAgentEnter != nil {
					h.OnAgentEnter(ctx, e)
				}
			}
		},
		OnAgentLeave: func(ctx context.Context, e *domain.AgentEvent) {
			for _, h := range hooks {
				if h.OnAgentLeave != nil {
					h.OnAgentLeave(ctx, e)
				}
			}
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			for _, h := range hooks {
				if h.OnTurnEnd != nil {
					h.OnTurnEnd(ctx, e)
				}
			}
		},
	}
}
