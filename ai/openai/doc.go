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


// Package openai talks to OpenAI-compatible servers (OpenAI itself, Ollama,
// LocalAI, vLLM) through langchaingo.
//
// Embeddings and chat completions may be served by different hosts, so the
// provider builds one client per host from ai.Config:
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 is appended
//	    ai.WithGenerationHost("http://gpu-box:8000"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	    ai.WithGenerationModel("qwen2.5:3b"),
//	)
//	provider, err := openai.NewProvider(cfg)
//
// Authentication failures (HTTP 401 or 403) surface as ai.ErrNotConfigured.
// When cfg.EmbeddingDimension is set, vectors of any other length fail with
// ai.ErrDimensionMismatch.
package openai
