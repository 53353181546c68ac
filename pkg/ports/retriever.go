package ports

import (
	"context"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// Retriever searches the knowledge base for entries relevant to a query.
// An empty result is a valid answer, not an error; k <= 0 means the
// implementation's default.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Snippet, error)
}
