package domain

import "strings"

// AgentName identifies a participant in the routing loop.
type AgentName string

const (
	// AgentSupervisor is the hub. Every specialist hands control back to it.
	AgentSupervisor AgentName = "supervisor"

	AgentPolicy      AgentName = "policy"
	AgentBilling     AgentName = "billing"
	AgentClaims      AgentName = "claims"
	AgentGeneralHelp AgentName = "general_help"

	// AgentEscalation and AgentFinalAnswer are terminals: they run once and end the turn.
	AgentEscalation  AgentName = "escalation"
	AgentFinalAnswer AgentName = "final_answer"
)

// Specialists returns the worker agents the supervisor may route to, in roster order.
func Specialists() []AgentName {
	return []AgentName{AgentPolicy, AgentBilling, AgentClaims, AgentGeneralHelp}
}

// IsSpecialist reports whether a is one of the routable worker agents.
func (a AgentName) IsSpecialist() bool {
	switch a {
	case AgentPolicy, AgentBilling, AgentClaims, AgentGeneralHelp:
		return true
	}
	return false
}

// IsTerminal reports whether a ends the turn when reached.
func (a AgentName) IsTerminal() bool {
	return a == AgentEscalation || a == AgentFinalAnswer
}

// aliases maps normalized reasoner vocabulary onto canonical agent names.
// Reasoning services are loose with naming; parsing is strict so routing stays closed.
var aliases = map[string]AgentName{
	"supervisor":       AgentSupervisor,
	"policy":           AgentPolicy,
	"billing":          AgentBilling,
	"claims":           AgentClaims,
	"claim":            AgentClaims,
	"general_help":     AgentGeneralHelp,
	"general":          AgentGeneralHelp,
	"help":             AgentGeneralHelp,
	"faq":              AgentGeneralHelp,
	"escalation":       AgentEscalation,
	"escalate":         AgentEscalation,
	"human":            AgentEscalation,
	"human_escalation": AgentEscalation,
	"final_answer":     AgentFinalAnswer,
	"final":            AgentFinalAnswer,
	"answer":           AgentFinalAnswer,
	"end":              AgentFinalAnswer,
	"done":             AgentFinalAnswer,
	"finish":           AgentFinalAnswer,
	"complete":         AgentFinalAnswer,
}

// ParseAgentName folds free-form agent references ("Policy Agent", "billing_agent",
// "END") onto the canonical set. The second return is false when the value names
// no known agent; callers decide whether that is a validation error or an
// escalation trigger.
func ParseAgentName(s string) (AgentName, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.TrimSuffix(key, "_agent")
	key = strings.TrimSuffix(key, "_node")

	name, ok := aliases[key]
	return name, ok
}
