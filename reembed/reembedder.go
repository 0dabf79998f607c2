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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// ProcessorType identifies the reembedder's checkpoint.
const ProcessorType = "reembed"

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder recomputes the vector of every stored chunk, for example after
// switching embedding models. Progress is checkpointed after each batch so
// an interrupted run resumes where it stopped.
type Reembedder struct {
	chunks      storage.ChunkRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *ChunkIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(chunks storage.ChunkRepository, checkpoints storage.CheckpointRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		chunks:      chunks,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(chunks, embedder, config.MaxRetries, config.RetryDelay),
		iterator:    NewChunkIterator(chunks, config.BatchSize),
	}, nil
}

// Run re-embeds every chunk stored after the last checkpoint. The checkpoint
// is removed once all chunks have been processed.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.chunks.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return r.checkpoints.DeleteCheckpoint(ctx, ProcessorType)
	}

	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, ProcessorType)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint == nil {
		checkpoint = &core.Checkpoint{ProcessorType: ProcessorType}
		fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
			total, r.iterator.batchSize)
	} else {
		fmt.Fprintf(r.progress, "Resuming reembedding after chunk %d (%d of %d chunks done)\n",
			checkpoint.LastID, checkpoint.Processed, total)
	}

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start(checkpoint.Processed)
	processed := 0

	err = r.iterator.ForEach(ctx, checkpoint.LastID, func(batch []*core.Chunk) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		checkpoint.LastID = batch[len(batch)-1].Id
		checkpoint.Processed += len(batch)
		if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		processed += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()
	if err := r.checkpoints.DeleteCheckpoint(ctx, ProcessorType); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(processed) / secs
	}
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		processed, elapsed.Round(time.Second), rate)

	return nil
}
