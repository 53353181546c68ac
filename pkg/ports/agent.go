package ports

import (
	"context"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// AgentNode is a participant in the routing loop. The orchestrator calls
// Process with the current state; the node answers with a partial update and
// never mutates the state directly.
//
// Specialists absorb their collaborators' failures into updates (an apology,
// a clarification request) so a degraded backend degrades the answer, not the
// turn. A returned error aborts the turn without persistence; only the hub is
// expected to do that, and only when it cannot route at all.
type AgentNode interface {
	// Name identifies the node within the roster.
	Name() domain.AgentName

	// Process computes this node's contribution to the turn.
	Process(ctx context.Context, state *domain.State) (domain.Update, error)
}
