// Package middleware provides SessionStore wrappers for data-at-rest
// concerns: AES-GCM state encryption with key rotation, and PII masking of
// extracted entities. Conversations carry insurance identifiers, so the
// wrappers keep the stored form safe without the engine knowing.
package middleware

import "github.com/switchyard-ai/switchyard/pkg/ports"

// Middleware wraps a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares so the first listed is the outermost wrapper.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
