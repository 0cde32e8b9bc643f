package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	logx "github.com/tryluxor/server/pkg/logger"
)

const (
	// NoProductsFound is returned to the agent instead of an error when nothing matches.
	NoProductsFound = "No products found"

	DefaultLookupLimit = 10
	maxNumCandidates   = 10000

	SourceVector = "vector"
	SourceRegex  = "regex"
)

// LookupResult is what the product_lookup tool hands back to the model.
type LookupResult struct {
	Products []ScoredProduct `json:"products"`
	Total    int             `json:"total"`
	Source   string          `json:"source,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func emptyLookup() LookupResult {
	return LookupResult{Products: []ScoredProduct{}, Message: NoProductsFound}
}

type Lookup struct {
	repo     Repository
	embedder embedding.Embedder
}

func NewLookup(repo Repository, embedder embedding.Embedder) *Lookup {
	return &Lookup{repo: repo, embedder: embedder}
}

// Find searches by vector similarity first and falls back to a case-insensitive
// regex over name and description when vector search fails or finds nothing.
func (l *Lookup) Find(ctx context.Context, query string, n int) (LookupResult, error) {
	query = strings.TrimSpace(query)
	if n <= 0 {
		n = DefaultLookupLimit
	}
	// a blank query matches nothing rather than the whole catalog
	if query == "" {
		return emptyLookup(), nil
	}

	total, err := l.repo.Count(ctx)
	if err != nil {
		return LookupResult{}, fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		logx.Debug().Str("query", query).Msg("product collection is empty")
		return emptyLookup(), nil
	}

	hits, err := l.vectorSearch(ctx, query, int(total), n)
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("vector search failed, falling back to regex")
	} else if len(hits) > 0 {
		return LookupResult{Products: hits, Total: len(hits), Source: SourceVector}, nil
	}

	products, err := l.repo.RegexSearch(ctx, query, n)
	if err != nil {
		return LookupResult{}, fmt.Errorf("regex search: %w", err)
	}
	if len(products) == 0 {
		return emptyLookup(), nil
	}

	out := make([]ScoredProduct, 0, len(products))
	for _, p := range products {
		out = append(out, ScoredProduct{Product: p})
	}
	return LookupResult{Products: out, Total: len(out), Source: SourceRegex}, nil
}

func (l *Lookup) vectorSearch(ctx context.Context, query string, total, n int) ([]ScoredProduct, error) {
	vecs, err := l.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty vector")
	}

	candidates := total
	if candidates < n {
		candidates = n
	}
	if candidates > maxNumCandidates {
		candidates = maxNumCandidates
	}
	return l.repo.VectorSearch(ctx, vecs[0], candidates, n)
}
