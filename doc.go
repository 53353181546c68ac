/*
Package switchyard is a multi-agent orchestration engine for customer support
conversations. A supervisor agent routes each user turn through a fixed roster
of specialists (policy, billing, claims, general help) and two terminals
(escalation, final answer), with a hard iteration cap that degrades to human
escalation instead of looping.

# Concept

Switchyard treats one conversation turn as a bounded hub-and-spoke loop. The
supervisor inspects the conversation and recommends the next agent; the chosen
specialist consults its system of record, amends the shared state, and hands
control back. Routing decisions themselves are pure and table-driven, so given
the same state the loop always moves the same way; only the agents talk to the
outside world. Sessions survive across turns through a pluggable store
(in-memory or Redis with transparent fallback), and every turn runs under a
per-session lock.

# Key Features

  - Bounded routing: the supervisor runs at most a configured number of times
    per turn; exhausting the budget escalates to a human, never spins.
  - Clarification pauses: any agent can stop the turn with a question; the
    next request on the same session resumes the conversation.
  - Hexagonal architecture: reasoner, record directories, retriever, and
    session store are ports; the engine never imports an SDK.
  - Durable sessions: Redis-backed persistence with in-process fallback and
    identical TTL semantics on both.

# Usage

Construct an Engine with a reasoner and call Turn per user message. All other
collaborators default to working in-process implementations.

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/switchyard-ai/switchyard"
		"github.com/switchyard-ai/switchyard/pkg/adapters/openai"
	)

	func main() {
		reasoner := openai.New(os.Getenv("OPENAI_API_KEY"))

		engine, err := switchyard.New(switchyard.WithReasoner(reasoner))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		res, err := engine.Turn(ctx, switchyard.TurnRequest{
			Message: "What does my policy POL-000001 cover?",
		})
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(res.Reply)

		// Follow-up turns reuse the session id.
		res, err = engine.Turn(ctx, switchyard.TurnRequest{
			SessionID: res.SessionID,
			Message:   "And when is my next bill due?",
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Reply)
	}
*/
package switchyard
