/*
Package ports defines the driven ports (interfaces) for the Switchyard engine.

These interfaces decouple the routing loop from external implementations,
allowing the engine to work with various session backends, reasoning services,
and systems of record.

# Key Interfaces

  - SessionStore: persists sessions with TTL expiry (Redis, in-process, or layered).
  - DistributedLocker: coordinates same-session turns across replicas.
  - AgentNode: a participant in the routing loop (hub, specialist, or terminal).
  - Reasoner: the language-model collaborator agents route and phrase with.
  - PolicyDirectory, BillingDirectory, ClaimsDirectory: systems of record.
  - Retriever: knowledge-base search backing general help.
*/
package ports
