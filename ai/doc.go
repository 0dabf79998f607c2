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

// Package ai provides abstractions for AI services used in Scholia.
//
// This package defines interfaces for the two model operations the pipeline
// needs: text embeddings and text generation. The core domain and business
// logic depend on these abstractions rather than on concrete clients.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces completions for chat replies, study artifacts and knowledge extraction
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/gemini: Google's Gemini API through the genai SDK
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Resilience
//
// ResilientEmbedder wraps any Embedder with a per-call timeout, a rate limit,
// retries with exponential backoff and vector validation. ErrNotConfigured and
// ErrDimensionMismatch are never retried.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockGenerator)
// return CONCRETE types to enable test assertions and behavior injection.
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	count := mockEmbed.CallCount()       // test assertion
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	embedder, err := ai.NewResilientEmbedderFromConfig(provider.Embedder(), config)
//	vector, err := embedder.EmbedText(ctx, "Hello world")
//	reply, err := provider.Generator().Generate(ctx, ai.GenerateRequest{Prompt: "Summarize..."})
package ai
