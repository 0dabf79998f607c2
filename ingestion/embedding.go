package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/knowledge"
	"github.com/poiesic/scholia/metrics"
	"github.com/poiesic/scholia/storage"
)

// segmentWriter embeds chunk texts and persists them with their knowledge entries.
type segmentWriter struct {
	chunkRepository     storage.ChunkRepository
	knowledgeRepository storage.KnowledgeRepository
	embedder            ai.Embedder
	extractor           knowledge.Extractor
	metrics             *metrics.Metrics
	logger              *slog.Logger
}

func newSegmentWriter(
	chunkRepository storage.ChunkRepository,
	knowledgeRepository storage.KnowledgeRepository,
	embedder ai.Embedder,
	extractor knowledge.Extractor,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*segmentWriter, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if knowledgeRepository == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if extractor == nil {
		extractor = knowledge.TemplateExtractor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &segmentWriter{
		chunkRepository:     chunkRepository,
		knowledgeRepository: knowledgeRepository,
		embedder:            embedder,
		extractor:           extractor,
		metrics:             m,
		logger:              logger.With("processor", "segments"),
	}, nil
}

// write processes segments in order: embed, persist the chunk, extract
// knowledge, persist the entry. It stops at the first error and returns the
// number of chunks already persisted, which are kept. Every write is checked
// against token, so a document deleted or reset mid-run stops the run instead
// of collecting orphaned chunks.
func (w *segmentWriter) write(ctx context.Context, doc *core.Document, token string, segments []string) (int, error) {
	written := 0
	for position, text := range segments {
		vector, err := w.embedder.EmbedText(ctx, text)
		if err != nil {
			return written, err
		}
		if len(vector) == 0 {
			return written, fmt.Errorf("chunk %d: %w", position, ai.ErrEmptyEmbedding)
		}

		added, err := w.chunkRepository.AddChunks(ctx, token, &core.Chunk{
			Owner:      doc.Owner,
			DocumentID: doc.Id,
			Position:   position,
			Text:       text,
			Vector:     vector,
		})
		if err != nil {
			return written, err
		}
		chunk := added[0]
		written++
		w.metrics.ChunksIngested(1)

		k, err := w.extractor.Extract(ctx, text)
		if err != nil {
			return written, err
		}
		if _, err := w.knowledgeRepository.AddKnowledgeEntries(ctx, token, &core.KnowledgeEntry{
			Owner:      doc.Owner,
			DocumentID: doc.Id,
			ChunkID:    chunk.Id,
			Summary:    k.Summary,
			Facts:      k.Facts,
			Questions:  k.Questions,
		}); err != nil {
			return written, err
		}

		w.logger.Debug("chunk ingested", "document", doc.Id, "position", position, "chunk", chunk.Id)
	}
	return written, nil
}
