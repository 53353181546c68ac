// Package agents implements the roster of the routing loop: the supervisor
// hub, the four specialist workers, and the two terminals. Every node takes
// its collaborators through an explicit Deps struct and answers with a
// partial state update.
//
// Failure handling is asymmetric on purpose. Specialists and terminals absorb
// collaborator failures into their updates (an apology, a clarification, a
// canned handoff) so a degraded backend degrades the answer instead of the
// turn. The supervisor is the exception: it cannot route without its
// reasoner, so a reasoner failure there aborts the turn.
package agents
