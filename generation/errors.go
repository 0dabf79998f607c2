package generation

import "errors"

var (
	// ErrGuardRequired indicates that an authorization guard is required.
	ErrGuardRequired = errors.New("authorization guard is required")
	// ErrChatRepositoryRequired indicates that a chat repository is required.
	ErrChatRepositoryRequired = errors.New("chat repository is required")
	// ErrContentRepositoryRequired indicates that a content repository is required.
	ErrContentRepositoryRequired = errors.New("content repository is required")
	// ErrChunkRepositoryRequired indicates that a chunk repository is required.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")
	// ErrKnowledgeRepositoryRequired indicates that a knowledge repository is required.
	ErrKnowledgeRepositoryRequired = errors.New("knowledge repository is required")
	// ErrSearcherRequired indicates that a searcher is required.
	ErrSearcherRequired = errors.New("searcher is required")
	// ErrGeneratorRequired indicates that a generator is required.
	ErrGeneratorRequired = errors.New("generator is required")
	// ErrNoDocuments indicates a content request without documents.
	ErrNoDocuments = errors.New("at least one document is required")
)

// Replies stored as the assistant's message when a chat turn fails.
const (
	MissingAPIKeyReply = "Error: AI service is not configured. Missing API key."
	ErrorReplyPrefix   = "Sorry, I encountered an error: "
)

var (
	// ErrInvalidTopK indicates a non-positive retrieval depth.
	ErrInvalidTopK = errors.New("top k must be greater than 0")
	// ErrInvalidTimeout indicates a non-positive generation timeout.
	ErrInvalidTimeout = errors.New("timeout must be greater than 0")
)
