package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
)

// ContextSeparator delimits chunk texts in a context blob.
const ContextSeparator = "\n\n---\n\n"

// Searcher answers text queries by embedding them and retrieving chunks.
type Searcher struct {
	retriever Retriever
	embedder  ai.Embedder
	logger    *slog.Logger
}

// NewSearcher creates a new searcher.
func NewSearcher(retriever Retriever, embedder ai.Embedder, logger *slog.Logger) (*Searcher, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		retriever: retriever,
		embedder:  embedder,
		logger:    logger.With("component", "searcher"),
	}, nil
}

// FindSimilar returns up to k of the owner's chunks most similar to query,
// optionally restricted to documentIDs.
func (s *Searcher) FindSimilar(ctx context.Context, owner core.OwnerID, query string, k int, documentIDs ...core.ID) ([]*core.SearchResult, error) {
	if k <= 0 || owner == "" {
		return []*core.SearchResult{}, nil
	}
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	return s.retriever.Search(ctx, Query{
		Owner:       owner,
		Vector:      embedding,
		K:           k,
		DocumentIDs: documentIDs,
	})
}

// BuildContext concatenates result texts in rank order separated by
// ContextSeparator. No results yield "".
func BuildContext(results []*core.SearchResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Chunk == nil {
			continue
		}
		texts = append(texts, r.Chunk.Text)
	}
	return strings.Join(texts, ContextSeparator)
}
