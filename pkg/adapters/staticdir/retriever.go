package staticdir

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// DefaultK is the hit count when the caller does not specify one.
const DefaultK = 3

// Retriever ranks FAQ entries by token overlap with the query. It is a
// deterministic stand-in for a vector store: scores are normalized cosine
// overlap over lowercase word sets, so relevance ordering is stable.
type Retriever struct {
	entries []indexedFAQ
}

var _ ports.Retriever = (*Retriever)(nil)

type indexedFAQ struct {
	faq    FAQ
	tokens map[string]struct{}
}

// NewRetriever indexes the given FAQ entries.
func NewRetriever(faqs []FAQ) *Retriever {
	r := &Retriever{entries: make([]indexedFAQ, 0, len(faqs))}
	for _, faq := range faqs {
		r.entries = append(r.entries, indexedFAQ{
			faq:    faq,
			tokens: tokenize(faq.Question + " " + faq.Answer),
		})
	}
	return r
}

// Search returns the k best-matching entries, best first. Entries with no
// overlap at all are excluded; an empty result is a valid answer.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]domain.Snippet, error) {
	if k <= 0 {
		k = DefaultK
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []domain.Snippet{}, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	matches := make([]scored, 0, len(r.entries))
	for i, entry := range r.entries {
		overlap := 0
		for token := range queryTokens {
			if _, ok := entry.tokens[token]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		norm := math.Sqrt(float64(len(queryTokens)) * float64(len(entry.tokens)))
		matches = append(matches, scored{idx: i, score: float64(overlap) / norm})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].idx < matches[j].idx
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	snippets := make([]domain.Snippet, 0, len(matches))
	for _, m := range matches {
		faq := r.entries[m.idx].faq
		snippets = append(snippets, domain.Snippet{
			Question: faq.Question,
			Answer:   faq.Answer,
			Score:    m.score,
		})
	}
	return snippets, nil
}

// stopwords are too common to signal relevance.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "do": {}, "does": {}, "for": {},
	"how": {}, "i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "what": {}, "when": {},
	"you": {}, "your": {},
}

func tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}
