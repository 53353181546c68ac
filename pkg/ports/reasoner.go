package ports

import "context"

// InferenceRequest is a single prompt to the reasoning service.
type InferenceRequest struct {
	// System frames the role the model plays for this call.
	System string

	// Prompt is the user-visible content to reason over.
	Prompt string

	// Context carries extracted entities the model should treat as ground truth.
	Context map[string]string

	// WantDecision asks the service for a routing decision rather than prose.
	WantDecision bool
}

// Inference is the parsed reply. For decision calls exactly one of NextAgent
// or Question is set; for prose calls only Text is.
type Inference struct {
	// Text is the generated prose.
	Text string

	// NextAgent is the recommended agent for decision calls.
	NextAgent string

	// Task describes the work handed to the recommended agent.
	Task string

	// Reason is the model's stated justification, kept for transcripts.
	Reason string

	// Question, when set, asks the user for missing information instead of routing.
	Question string
}

// Reasoner is the language-model collaborator. Implementations return
// *domain.ExternalError when the service is unreachable or misbehaving so
// callers can tell an outage from a bad request.
type Reasoner interface {
	Infer(ctx context.Context, req InferenceRequest) (*Inference, error)
}
