package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/switchyard-ai/switchyard/internal/presentation/graph"
	"github.com/switchyard-ai/switchyard/pkg/domain"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Export the routing topology as a Mermaid diagram",
	Long: `Prints the static agent graph (supervisor hub, specialists, terminals) as
a Mermaid flowchart for documentation.`,
	Run: func(cmd *cobra.Command, args []string) {
		roster := []domain.AgentName{domain.AgentSupervisor}
		roster = append(roster, domain.Specialists()...)
		roster = append(roster, domain.AgentEscalation, domain.AgentFinalAnswer)

		fmt.Print(graph.GenerateMermaid(roster))
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
