package vectorstore

import (
	"context"
	"log/slog"

	"github.com/finlens/ipoagent/internal/document"
)

// Index is the similarity-search collaborator consumed by the gateway.
type Index interface {
	Query(ctx context.Context, docID, text string, k int, section document.Section) ([]document.SearchResult, error)
}

// Gateway wraps the similarity index with the retrieval policy the answer
// handlers rely on: a section-filtered query that falls back to one
// unfiltered query when the filter finds nothing, and index failures
// surfacing as empty results so handlers degrade instead of crashing.
type Gateway struct {
	index Index
	log   *slog.Logger
}

func NewGateway(index Index, log *slog.Logger) *Gateway {
	return &Gateway{index: index, log: log}
}

// Retrieve returns up to k relevance-ranked results. Every call hits the
// index fresh; there is no cache and no retry beyond the single documented
// filter fallback.
func (g *Gateway) Retrieve(ctx context.Context, docID, text string, k int, section document.Section) []document.SearchResult {
	results, err := g.index.Query(ctx, docID, text, k, section)
	if err != nil {
		g.log.Warn("similarity query failed", "section", section, "error", err)
		return nil
	}
	if len(results) == 0 && section != "" {
		results, err = g.index.Query(ctx, docID, text, k, "")
		if err != nil {
			g.log.Warn("unfiltered fallback query failed", "error", err)
			return nil
		}
	}
	return results
}
