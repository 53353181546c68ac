/*
Package domain contains the core domain models and business logic for the Switchyard engine.

It defines the fundamental entities of the routing loop, such as the conversation
State, the partial Update returned by agents, and the durable Session envelope.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - State: the per-turn snapshot of a conversation (messages, extracted context, routing, flags, results).
  - Update: a partial mutation produced by an agent; State.Apply defines the merge rules.
  - Session: the durable record wrapping a State with expiry and accumulated metadata.
  - AgentName: the closed set of participants in the routing loop.
*/
package domain
