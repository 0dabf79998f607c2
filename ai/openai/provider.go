// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/scholia/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider serves embeddings and chat completions from OpenAI-compatible
// hosts. Embedding and generation may live on different hosts.
type Provider struct {
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider validates config and builds both clients.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	embedder, err := newEmbedder(config, logger)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(config, logger)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		embedder:  embedder,
		generator: generator,
		logger:    logger.With("component", "openai-provider"),
	}
	p.logger.Debug("provider ready",
		"embeddingHost", config.EmbeddingHost,
		"embeddingModel", config.EmbeddingModel,
		"generationHost", config.GenerationHost,
		"generationModel", config.GenerationModel)
	return p, nil
}

func (p *Provider) Embedder() ai.Embedder   { return p.embedder }
func (p *Provider) Generator() ai.Generator { return p.generator }

// Close is a no-op; the HTTP clients hold no resources.
func (p *Provider) Close() error {
	return nil
}

func newClient(host string, config *ai.Config, opts ...openai.Option) (*openai.LLM, error) {
	opts = append([]openai.Option{
		openai.WithBaseURL(host),
		openai.WithToken(token(config)),
	}, opts...)
	return openai.New(opts...)
}

// token returns the configured API key. Local OpenAI-compatible servers
// accept any bearer token, but langchaingo refuses an empty one.
func token(config *ai.Config) string {
	if config.APIKey == "" {
		return "none"
	}
	return config.APIKey
}

// classify marks authentication failures as ai.ErrNotConfigured so callers
// stop retrying and can report the missing key.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "status code: 401") || strings.Contains(msg, "status code: 403") {
		return fmt.Errorf("%w: %w", ai.ErrNotConfigured, err)
	}
	return err
}
