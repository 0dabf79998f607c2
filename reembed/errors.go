package reembed

import "errors"

var (
	// ErrChunkRepositoryRequired indicates that a chunk repository is required.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")
	// ErrCheckpointRepositoryRequired indicates that a checkpoint repository is required.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository is required")
	// ErrEmbedderRequired indicates that an embedder is required.
	ErrEmbedderRequired = errors.New("embedder is required")
	// ErrEmbeddingCountMismatch indicates the embedder returned the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
