package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scholia/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// embeddingBatchSize caps the inputs sent in one /embeddings request.
const embeddingBatchSize = 64

// Embedder implements ai.Embedder on an OpenAI-compatible /embeddings endpoint.
type Embedder struct {
	embedder  embeddings.Embedder
	model     string
	dimension int // 0 accepts whatever the model returns
	logger    *slog.Logger
}

func newEmbedder(config *ai.Config, logger *slog.Logger) (*Embedder, error) {
	client, err := newClient(config.EmbeddingHost, config, openai.WithEmbeddingModel(config.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embeddingBatchSize),
	)
	if err != nil {
		return nil, err
	}
	return &Embedder{
		embedder:  embedder,
		model:     config.EmbeddingModel,
		dimension: config.EmbeddingDimension,
		logger:    logger.With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder returns an embedder for config.EmbeddingHost.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newEmbedder(config, slog.Default())
}

// EmbedText embeds one chunk or query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("embedding request failed", "length", len(text), "err", err)
		return nil, classify(err)
	}
	if err := e.check(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// EmbedTexts embeds texts in order. The result has one vector per input.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("embedding batch", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("batch embedding request failed", "count", len(texts), "err", err)
		return nil, classify(err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ai.ErrEmptyEmbedding, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if err := e.check(v); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (e *Embedder) check(vector []float32) error {
	if len(vector) == 0 {
		return ai.ErrEmptyEmbedding
	}
	if e.dimension > 0 && len(vector) != e.dimension {
		return fmt.Errorf("%w: %s returned %d, want %d", ai.ErrDimensionMismatch, e.model, len(vector), e.dimension)
	}
	return nil
}
