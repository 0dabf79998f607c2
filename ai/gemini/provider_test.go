package gemini

import (
	"context"
	"testing"

	"github.com/poiesic/scholia/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_WithoutKey(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, ai.GeminiConfig(""))
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.Embedder().EmbedText(ctx, "hello")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)

	_, err = provider.Generator().Generate(ctx, ai.GenerateRequest{Prompt: "hello"})
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestProvider_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, ai.GeminiConfig("key"))
	require.NoError(t, err)

	vectors, err := provider.Embedder().EmbedTexts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestGeminiConfigDefaults(t *testing.T) {
	cfg := ai.GeminiConfig("key")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ai.GeminiEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Empty(t, cfg.EmbeddingHost)
}
