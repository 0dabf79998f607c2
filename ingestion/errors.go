package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrKnowledgeRepositoryRequired is returned when a knowledge repository is not provided.
	ErrKnowledgeRepositoryRequired = errors.New("knowledge repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrPipelineClosed is returned when scheduling on a released pipeline.
	ErrPipelineClosed = errors.New("pipeline closed")

	// ErrUnsupportedScheme is returned for source URLs the fetcher cannot read.
	ErrUnsupportedScheme = errors.New("unsupported source URL scheme")
)

const (
	// MissingSourceMessage is the failure message for documents with neither text nor source URL.
	MissingSourceMessage = "Document is missing file URL."

	// SchedulingFailedMessage prefixes the failure message of documents whose run could not be scheduled.
	SchedulingFailedMessage = "Failed to schedule document processing"

	// UnrecordedResultMessage is the failure message used when a run's own outcome could not be stored.
	UnrecordedResultMessage = "Failed to record document processing result."

	// NoContentNote is the ready note for documents that yield no chunks.
	NoContentNote = "No processable content found in document."
)
