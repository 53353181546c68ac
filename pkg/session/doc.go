/*
Package session implements session management and persistence orchestration.

It provides the per-session mutual exclusion every turn runs under, the
failover layering of a durable store over an in-process fallback, and the
background sweeper that keeps the fallback free of expired entries. The
Manager coordinates access within a process and, with a distributed locker,
across replicas.
*/
package session
