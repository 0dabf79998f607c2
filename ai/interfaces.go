package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest is a single text generation call.
type GenerateRequest struct {
	// System steers the model. Optional.
	System string

	// Prompt is the user turn.
	Prompt string

	// Temperature overrides the configured temperature when non-nil.
	Temperature *float64

	// JSON asks the model for a JSON object response.
	JSON bool
}

// Generator produces text completions.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the model's reply to req.
	// Returns ErrNotConfigured if the backing service has no credentials.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
