package switchyard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// ExampleEngine_Turn demonstrates a single resolved turn against the bundled
// fixture records, with a canned reasoner standing in for a live model.
func ExampleEngine_Turn() {
	// 1. Script the reasoner: route to the policy specialist, then wrap up.
	// In production this is the OpenAI adapter (pkg/adapters/openai).
	reasoner := &scriptedReasoner{replies: []ports.Inference{
		{NextAgent: "policy", Task: "Look up the policy status"},
		{},
		{NextAgent: "final_answer", Task: "Deliver the answer"},
		{},
	}}

	// 2. Everything else defaults: fixture directories, in-memory sessions.
	engine, err := switchyard.New(switchyard.WithReasoner(reasoner))
	if err != nil {
		log.Fatal(err)
	}

	// 3. One user message, one bounded routing loop.
	res, err := engine.Turn(context.Background(), switchyard.TurnRequest{
		Message: "Is policy POL-000002 still active?",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("agent:", res.Agent)
	fmt.Println("complete:", res.Complete)
	fmt.Println("iterations:", res.Diagnostics.Iterations)
	// Output:
	// agent: final_answer
	// complete: true
	// iterations: 2
}

// ExampleEngine_Turn_clarification shows the pause protocol: the supervisor
// asks for a missing identifier and the turn ends cleanly, waiting for the
// user's next message on the same session.
func ExampleEngine_Turn_clarification() {
	reasoner := &scriptedReasoner{replies: []ports.Inference{
		{Question: "Could you share your policy number?"},
	}}

	engine, err := switchyard.New(switchyard.WithReasoner(reasoner))
	if err != nil {
		log.Fatal(err)
	}

	res, err := engine.Turn(context.Background(), switchyard.TurnRequest{
		Message: "I want to check my coverage.",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Reply)
	fmt.Println("needs clarification:", res.NeedsClarification)
	// Output:
	// Could you share your policy number?
	// needs clarification: true
}
