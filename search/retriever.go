package search

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// DefaultK is the number of chunks retrieved when callers do not choose.
const DefaultK = 5

// Query selects the chunks to rank.
type Query struct {
	Owner core.OwnerID
	// Vector is the query embedding.
	Vector []float32
	// K is the maximum number of results. K <= 0 returns nothing.
	K int
	// DocumentIDs optionally narrows the scope to these documents.
	DocumentIDs []core.ID
}

// Retriever returns the chunks most similar to a query, best first.
type Retriever interface {
	Search(ctx context.Context, query Query) ([]*core.SearchResult, error)
}

// ExhaustiveRetriever ranks every chunk in scope. It is an O(n) scan per query.
type ExhaustiveRetriever struct {
	chunks  storage.ChunkRepository
	monitor SearchMonitor
	logger  *slog.Logger
}

var _ Retriever = (*ExhaustiveRetriever)(nil)

// Option configures an ExhaustiveRetriever.
type Option func(*ExhaustiveRetriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *ExhaustiveRetriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// WithMonitor installs a monitor that observes every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(r *ExhaustiveRetriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewExhaustiveRetriever creates a retriever over chunks.
func NewExhaustiveRetriever(chunks storage.ChunkRepository, opts ...Option) (*ExhaustiveRetriever, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	r := &ExhaustiveRetriever{
		chunks:  chunks,
		monitor: &noopMonitor{},
		logger:  slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Search scores the owner's chunks against query.Vector and returns the top
// K. Chunks whose vectors differ in dimension from the query are skipped.
// Ties are broken by ascending chunk ID so results are deterministic.
func (r *ExhaustiveRetriever) Search(ctx context.Context, query Query) ([]*core.SearchResult, error) {
	r.monitor.Start(query)
	if query.K <= 0 || query.Owner == "" || len(query.Vector) == 0 {
		r.monitor.Finish(0, nil)
		return []*core.SearchResult{}, nil
	}

	var (
		results []*core.SearchResult
		scanned int
		skipped int
	)
	err := r.chunks.ScanChunks(ctx, query.Owner, query.DocumentIDs, func(chunk *core.Chunk) error {
		scanned++
		score, ok := CosineSimilarity(query.Vector, chunk.Vector)
		if !ok {
			skipped++
			r.monitor.ChunkSkipped(chunk)
			return nil
		}
		r.monitor.ChunkScored(chunk, score)
		results = append(results, &core.SearchResult{Chunk: chunk, Score: score})
		return nil
	})
	if err != nil {
		r.logger.Error("error scanning chunks", "owner", query.Owner, "err", err)
		return nil, err
	}
	if skipped > 0 {
		r.logger.Warn("skipped chunks with mismatched dimensions",
			"owner", query.Owner,
			"skipped", skipped,
			"dimension", len(query.Vector))
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Chunk.Id < b.Chunk.Id:
			return -1
		case a.Chunk.Id > b.Chunk.Id:
			return 1
		}
		return 0
	})
	if len(results) > query.K {
		results = results[:query.K]
	}
	if results == nil {
		results = []*core.SearchResult{}
	}

	r.monitor.Finish(scanned, results)
	return results, nil
}
