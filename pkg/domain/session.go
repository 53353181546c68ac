package domain

import "time"

// Session is the durable envelope around a conversation State. It is what
// stores persist; expiry and metadata live here rather than on the State so
// the routing loop never sees them.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Meta      Metadata  `json:"meta"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Metadata accumulates facts about a session across turns.
type Metadata struct {
	// AgentsUsed lists every agent that has executed for this session, in
	// first-seen order, without duplicates.
	AgentsUsed []string `json:"agents_used,omitempty"`

	// TotalIterations sums the hub visits of every turn.
	TotalIterations int `json:"total_iterations"`

	Escalated bool `json:"escalated"`
	Completed bool `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session with an empty state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:    id,
		State: *NewState(id),
		Meta:  Metadata{CreatedAt: now, UpdatedAt: now},
	}
}

// MarkAgent records an agent in AgentsUsed with set semantics.
func (s *Session) MarkAgent(name AgentName) {
	for _, used := range s.Meta.AgentsUsed {
		if used == string(name) {
			return
		}
	}
	s.Meta.AgentsUsed = append(s.Meta.AgentsUsed, string(name))
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.State = *s.State.Clone()
	if s.Meta.AgentsUsed != nil {
		clone.Meta.AgentsUsed = make([]string, len(s.Meta.AgentsUsed))
		copy(clone.Meta.AgentsUsed, s.Meta.AgentsUsed)
	}
	return &clone
}

// Summary is the listing projection of a session. It never carries the
// transcript, only shape and metadata.
type Summary struct {
	ID              string    `json:"id"`
	MessageCount    int       `json:"message_count"`
	AgentsUsed      []string  `json:"agents_used,omitempty"`
	TotalIterations int       `json:"total_iterations"`
	Escalated       bool      `json:"escalated"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Summarize projects the session onto its Summary view.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:              s.ID,
		MessageCount:    len(s.State.Messages),
		AgentsUsed:      s.Meta.AgentsUsed,
		TotalIterations: s.Meta.TotalIterations,
		Escalated:       s.Meta.Escalated,
		Completed:       s.Meta.Completed,
		UpdatedAt:       s.Meta.UpdatedAt,
		ExpiresAt:       s.ExpiresAt,
	}
}
