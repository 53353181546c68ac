package domain

// Update is the partial mutation an agent returns. Optional scalars are
// pointers so "not mentioned" is distinguishable from "set to the zero value";
// an agent that says nothing about a field leaves it untouched.
type Update struct {
	// Messages are appended to the transcript in order.
	Messages []Message

	// Context entries are merged key-by-key; entries here override existing keys.
	Context map[string]string

	NextAgent *AgentName
	Task      *string

	NeedsClarification *bool
	RequiresEscalation *bool
	Complete           *bool

	FinalAnswer *string

	// Lookups entries are merged by key.
	Lookups map[string]any

	// Snippets replaces the retrieval result when non-nil. An empty non-nil
	// slice is a meaningful write: retrieval ran and found nothing.
	Snippets []Snippet
}

// IsZero reports whether the update carries no changes at all.
func (u Update) IsZero() bool {
	return len(u.Messages) == 0 &&
		len(u.Context) == 0 &&
		u.NextAgent == nil &&
		u.Task == nil &&
		u.NeedsClarification == nil &&
		u.RequiresEscalation == nil &&
		u.Complete == nil &&
		u.FinalAnswer == nil &&
		len(u.Lookups) == 0 &&
		u.Snippets == nil
}

// Apply merges an update into the state. Merge rules: messages concatenate,
// context and lookups merge per key with the update winning, scalars and flags
// overwrite only when present, snippets overwrite only when non-nil.
func (s *State) Apply(u Update) {
	s.Messages = append(s.Messages, u.Messages...)

	if len(u.Context) > 0 {
		if s.Context == nil {
			s.Context = make(map[string]string, len(u.Context))
		}
		for k, v := range u.Context {
			s.Context[k] = v
		}
	}

	if u.NextAgent != nil {
		s.Routing.NextAgent = *u.NextAgent
	}
	if u.Task != nil {
		s.Routing.Task = *u.Task
	}

	if u.NeedsClarification != nil {
		s.Flags.NeedsClarification = *u.NeedsClarification
	}
	if u.RequiresEscalation != nil {
		s.Flags.RequiresEscalation = *u.RequiresEscalation
	}
	if u.Complete != nil {
		s.Flags.Complete = *u.Complete
	}

	if u.FinalAnswer != nil {
		s.Results.FinalAnswer = *u.FinalAnswer
	}

	if len(u.Lookups) > 0 {
		if s.Results.Lookups == nil {
			s.Results.Lookups = make(map[string]any, len(u.Lookups))
		}
		for k, v := range u.Lookups {
			s.Results.Lookups[k] = v
		}
	}

	if u.Snippets != nil {
		s.Results.Snippets = u.Snippets
	}
}

// Ptr wraps a value for the optional fields of Update.
func Ptr[T any](v T) *T {
	return &v
}
