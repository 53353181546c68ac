package middleware

import (
	"context"
	"regexp"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

const maskValue = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware returns a middleware that masks the values of extracted
// entities and lookup payloads whose keys match any of the patterns, before
// they reach the backing store. The in-memory session the engine works with
// is untouched; reads return the masked form.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.Session) error {
	// Clone so masking never leaks into the state the routing loop holds.
	cloned := session.Clone()

	for key := range cloned.State.Context {
		if m.matches(key) {
			cloned.State.Context[key] = maskValue
		}
	}
	if cloned.State.Results.Lookups != nil {
		cloned.State.Results.Lookups = m.maskLookups(cloned.State.Results.Lookups)
	}

	if err := m.next.Save(ctx, cloned); err != nil {
		return err
	}
	session.ExpiresAt = cloned.ExpiresAt
	return nil
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// maskLookups returns a masked copy. Nested maps are copied before masking;
// Session.Clone only shallow-copies lookup values, and the live state must
// stay intact.
func (m *piiMiddleware) maskLookups(lookups map[string]any) map[string]any {
	out := make(map[string]any, len(lookups))
	for key, value := range lookups {
		if m.matches(key) {
			out[key] = maskValue
			continue
		}
		if sub, ok := value.(map[string]any); ok {
			out[key] = m.maskLookups(sub)
			continue
		}
		out[key] = value
	}
	return out
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Session, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	return m.next.List(ctx, limit)
}

func (m *piiMiddleware) Refresh(ctx context.Context, id string) error {
	return m.next.Refresh(ctx, id)
}

func (m *piiMiddleware) Ping(ctx context.Context) error {
	return m.next.Ping(ctx)
}
