package agents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// DefaultTopK is the knowledge-base hit count handed to general help.
const DefaultTopK = 3

// Deps carries the collaborators shared by the roster. Build it once and hand
// it to Roster; nodes hold references, never package globals.
type Deps struct {
	// Reasoner is the language-model collaborator. Required.
	Reasoner ports.Reasoner

	// Policies, Billing, and Claims are the systems of record. Required.
	Policies ports.PolicyDirectory
	Billing  ports.BillingDirectory
	Claims   ports.ClaimsDirectory

	// Retriever serves the knowledge base behind general help. Required.
	Retriever ports.Retriever

	// TopK caps retrieval hits. Zero means DefaultTopK.
	TopK int

	// Logger defaults to a no-op logger.
	Logger *slog.Logger

	// Clock stamps transcript messages. Defaults to time.Now.
	Clock func() time.Time
}

func (d Deps) validate() error {
	if d.Reasoner == nil {
		return fmt.Errorf("agents: reasoner is required")
	}
	if d.Policies == nil || d.Billing == nil || d.Claims == nil {
		return fmt.Errorf("agents: all three directories are required")
	}
	if d.Retriever == nil {
		return fmt.Errorf("agents: retriever is required")
	}
	return nil
}

// normalized fills optional fields. Every constructor goes through this, so a
// node never carries a nil logger or clock.
func (d Deps) normalized() Deps {
	if d.TopK <= 0 {
		d.TopK = DefaultTopK
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// Roster builds the full agent set over shared dependencies, in hub,
// specialists, terminals order.
func Roster(deps Deps) ([]ports.AgentNode, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return []ports.AgentNode{
		NewSupervisor(deps),
		NewPolicy(deps),
		NewBilling(deps),
		NewClaims(deps),
		NewGeneralHelp(deps),
		NewEscalation(deps),
		NewFinalAnswer(deps),
	}, nil
}
