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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/scholia/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newGenerator(config *ai.Config, logger *slog.Logger) (*Generator, error) {
	client, err := newClient(config.GenerationHost, config, openai.WithModel(config.GenerationModel))
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}
	return &Generator{
		client:      client,
		temperature: config.Temperature,
		logger:      logger.With("component", "openai-generator", "model", config.GenerationModel),
	}, nil
}

// NewGenerator returns a generator for config.GenerationHost.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newGenerator(config, slog.Default())
}

// Generate sends the system and user turns to the chat completion API.
func (g *Generator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	var content []llms.MessageContent
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	g.logger.Debug("generating completion", "promptLength", len(req.Prompt), "json", req.JSON)
	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", classify(err)
	}
	if len(response.Choices) < 1 {
		return "", ai.ErrEmptyResponse
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
