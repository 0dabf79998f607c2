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

// Package generation turns ingested knowledge into chat answers and study
// artifacts.
//
// # Chat
//
// SendMessage persists the user's message before anything can fail, then
// embeds the query, retrieves the owner's most similar chunks and asks the
// generator for an answer grounded in them. When nothing is retrieved the
// prompt carries NoContextMarker instead of an empty context. Any failure
// after the user message is written is recorded as an assistant reply so the
// transcript never ends on an unanswered question. Turns on one notebook are
// serialized; different notebooks proceed concurrently.
//
// # Structured content
//
// GenerateContent gathers the knowledge entries of each requested document,
// groups them under the document name and renders the prompt template for
// the requested content type. The result is stored as a new GeneratedContent
// record; earlier artifacts of the same type are kept.
package generation
