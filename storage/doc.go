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


// Package storage provides the storage abstraction layer for scholia.
//
// This package defines repository interfaces that decouple storage implementation
// from the ingestion and generation logic. The BadgerDB implementation lives in
// storage/badger; tests may substitute their own implementations.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - DocumentRepository: documents, their status state machine and cascading deletes
//   - ChunkRepository: embedded chunks, scanned by owner for retrieval
//   - KnowledgeRepository: per-chunk summaries, facts and questions
//   - NotebookRepository: notebooks and document links
//   - ContentRepository: generated study artifacts
//   - ChatRepository: append-only notebook conversations
//   - CheckpointRepository: progress markers for resumable batch jobs
//
// # Status transitions
//
// Document status changes go through ClaimDocument, FinishDocument and
// ResetDocument. Each runs in a single write transaction and compares the
// stored state (and run token) before writing, so two ingestion runs can never
// both own a document and a finished document is never moved back to
// processing by a run.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
