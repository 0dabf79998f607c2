package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scholia/ai"
	"google.golang.org/genai"
)

// Embedder implements ai.Embedder with Gemini embedding models.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
	logger    *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func newEmbedder(client *genai.Client, config *ai.Config) *Embedder {
	return &Embedder{
		client:    client,
		model:     config.EmbeddingModel,
		dimension: config.EmbeddingDimension,
		logger:    slog.Default().With("component", "gemini-embedder"),
	}
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds every text in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.client == nil {
		return nil, fmt.Errorf("gemini: %w", ai.ErrNotConfigured)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	config := &genai.EmbedContentConfig{}
	if e.dimension > 0 {
		config.OutputDimensionality = genai.Ptr(int32(e.dimension))
	}

	e.logger.Debug("generating embeddings", "count", len(texts), "model", e.model)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ai.ErrEmptyEmbedding, len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, ai.ErrEmptyEmbedding
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
