// Package gemini implements the ai interfaces on Google's Gemini API.
//
// A provider built without an API key is still usable: every call fails
// with ai.ErrNotConfigured, which callers surface as a configuration error
// instead of retrying.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/scholia/ai"
	"google.golang.org/genai"
)

// Provider implements ai.AIProvider using the Gemini API.
type Provider struct {
	client    *genai.Client
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a Gemini provider. A host set on config overrides the
// API base URL.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "gemini-provider")

	var client *genai.Client
	if config.HasCredentials() {
		cc := &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if config.GenerationHost != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.GenerationHost}
		}
		var err error
		client, err = genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	} else {
		logger.Warn("Gemini API key not set, AI calls will fail")
	}

	return &Provider{
		client:    client,
		embedder:  newEmbedder(client, config),
		generator: newGenerator(client, config),
		logger:    logger,
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
// The genai client holds no resources that need explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return nil
}
