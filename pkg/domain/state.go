package domain

import "time"

// Message roles. Routing notes written by the loop itself use RoleSystem so
// transcripts stay attributable.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Well-known Context keys. Agents and the API surface share these so an
// entity extracted once stays addressable for the rest of the session.
const (
	ContextPolicyNumber = "policy_number"
	ContextCustomerID   = "customer_id"
	ContextClaimID      = "claim_id"
)

// Message is a single transcript entry. The Messages log is append-only:
// agents add entries, nothing ever rewrites or removes them.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Routing carries the supervisor's current recommendation and the hub-visit
// counter for the turn in flight.
type Routing struct {
	// NextAgent is the latest routing recommendation. Empty before the first
	// supervisor visit of a turn.
	NextAgent AgentName `json:"next_agent,omitempty"`

	// Task is the work description handed to the recommended agent.
	Task string `json:"task,omitempty"`

	// Iterations counts supervisor visits within the current turn. It is
	// incremented exactly once per hub visit, by the orchestrator, and reset
	// at the start of every turn.
	Iterations int `json:"iterations"`
}

// Flags are the boolean routing controls. They default to false and are only
// changed by an Update that explicitly sets them.
type Flags struct {
	// NeedsClarification pauses the turn so the user can answer a question.
	NeedsClarification bool `json:"needs_clarification"`

	// RequiresEscalation forces the escalation terminal regardless of any
	// routing recommendation.
	RequiresEscalation bool `json:"requires_escalation"`

	// Complete marks the turn finished. Once true, no further agent executes.
	Complete bool `json:"complete"`
}

// Results accumulates what the turn produced.
type Results struct {
	// FinalAnswer is the user-facing resolution text, set by a terminal agent.
	FinalAnswer string `json:"final_answer,omitempty"`

	// Lookups holds raw record payloads keyed by kind ("policy", "bill", ...).
	Lookups map[string]any `json:"lookups,omitempty"`

	// Snippets is the last retrieval result. nil means retrieval never ran;
	// an empty non-nil slice means it ran and found nothing. The distinction
	// is observable downstream, so no omitempty here.
	Snippets []Snippet `json:"snippets"`
}

// Snippet is one retrieved knowledge-base entry.
type Snippet struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// State is the conversation snapshot the routing loop operates on. The
// orchestrator owns it exclusively for the duration of a turn; agents receive
// it read-only and communicate changes through Updates.
type State struct {
	SessionID string `json:"session_id"`

	// Input is the user text for the turn in flight.
	Input string `json:"input,omitempty"`

	Messages []Message `json:"messages"`

	// Context holds extracted entities (customer_id, policy_number, claim_id, ...).
	// Merged key-by-key; the most recent write wins.
	Context map[string]string `json:"context,omitempty"`

	Routing Routing `json:"routing"`
	Flags   Flags   `json:"flags"`
	Results Results `json:"results"`
}

// NewState creates a clean state for a session.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Context:   make(map[string]string),
	}
}

// AddMessage appends a transcript entry stamped with the given time.
func (s *State) AddMessage(role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, Timestamp: at})
}

// LastAssistantText returns the most recent assistant message, or "" when the
// transcript has none.
func (s *State) LastAssistantText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Text
		}
	}
	return ""
}

// Clone returns a deep copy. Stores copy on read and write so callers can
// never mutate persisted state through a shared reference.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s

	if s.Messages != nil {
		clone.Messages = make([]Message, len(s.Messages))
		copy(clone.Messages, s.Messages)
	}
	if s.Context != nil {
		clone.Context = make(map[string]string, len(s.Context))
		for k, v := range s.Context {
			clone.Context[k] = v
		}
	}
	if s.Results.Lookups != nil {
		clone.Results.Lookups = make(map[string]any, len(s.Results.Lookups))
		for k, v := range s.Results.Lookups {
			clone.Results.Lookups[k] = v
		}
	}
	if s.Results.Snippets != nil {
		clone.Results.Snippets = make([]Snippet, len(s.Results.Snippets))
		copy(clone.Results.Snippets, s.Results.Snippets)
	}
	return &clone
}
