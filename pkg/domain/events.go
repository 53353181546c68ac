package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAgentEnter EventType = "agent_enter"
	EventAgentLeave EventType = "agent_leave"
	EventTurnEnd    EventType = "turn_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// AgentEvent represents entry into or exit from an agent.
type AgentEvent struct {
	EventBase
	Agent AgentName `json:"agent"`

	// Iteration is the hub-visit count at the time of the event.
	Iteration int `json:"iteration"`
}

// TurnEvent represents the end of a routing turn, clean or not.
type TurnEvent struct {
	EventBase
	Terminal AgentName     `json:"terminal,omitempty"`
	Paused   bool          `json:"paused,omitempty"`
	Agents   []AgentName   `json:"agents"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"err,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAgentEnter func(context.Context, *AgentEvent)
	OnAgentLeave func(context.Context, *AgentEvent)
	OnTurnEnd    func(context.Context, *TurnEvent)
}
