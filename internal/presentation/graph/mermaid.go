// Package graph renders the routing topology for documentation and
// debugging.
package graph

import (
	"fmt"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// GenerateMermaid converts an agent roster into a Mermaid flowchart (graph
// TD). Specialists get round-trip edges to the supervisor; terminals get a
// one-way edge and no outgoing transitions.
func GenerateMermaid(agents []domain.AgentName) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, agent := range agents {
		switch {
		case agent == domain.AgentSupervisor:
			sb.WriteString(fmt.Sprintf("    %s{\"%s\"}\n", agent, agent))
		case agent.IsTerminal():
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]:::terminal\n", agent, agent))
		default:
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", agent, agent))
		}
	}
	sb.WriteString("\n")

	for _, agent := range agents {
		switch {
		case agent == domain.AgentSupervisor:
		case agent.IsTerminal():
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", domain.AgentSupervisor, agent))
		default:
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", domain.AgentSupervisor, agent))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", agent, domain.AgentSupervisor))
		}
	}

	sb.WriteString("\n    classDef terminal fill:#fee2e2,stroke:#dc2626\n")
	return sb.String()
}
