package storage

import (
	"context"

	"github.com/poiesic/scholia/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository (ID sequences).
	// It does not close the shared backend.
	Close() error
}

// DocumentRepository provides operations for managing documents and their
// ingestion status.
type DocumentRepository interface {
	Repository
	// AddDocument stores a new document with a generated ID.
	// Sets CreatedAt/UpdatedAt. A document without a status is stored as processing.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments returns the owner's documents ordered by ID.
	ListDocuments(ctx context.Context, owner core.OwnerID) ([]*core.Document, error)

	// UpdateDocument stores user edits of the name and text.
	// Status and run token are preserved from the stored record.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// DeleteDocument removes a document together with its chunks,
	// knowledge entries and notebook links.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// ClaimDocument installs token as the document's run token.
	// Returns ErrNotFound if the document is missing, ErrNotProcessing if it
	// is not processing and ErrAlreadyClaimed if another token is installed.
	ClaimDocument(ctx context.Context, id core.ID, token string) (*core.Document, error)

	// SetDocumentText stores extracted text for a document held by token.
	SetDocumentText(ctx context.Context, id core.ID, token string, text string) error

	// FinishDocument moves a claimed document to its terminal status and
	// releases the run token. Returns ErrRunTokenMismatch if token does not
	// hold the document and core.ErrInvalidTransition for illegal moves.
	FinishDocument(ctx context.Context, id core.ID, token string, status core.Status) (*core.Document, error)

	// ResetDocument purges a failed document's chunks and knowledge entries
	// and returns it to processing, in one transaction.
	ResetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ReleaseClaims clears the run token of every processing document and
	// returns their IDs. It must only be called while no ingestion run is
	// active, such as at startup after an unclean shutdown.
	ReleaseClaims(ctx context.Context) ([]core.ID, error)
}

// ChunkRepository provides operations for managing embedded chunks.
type ChunkRepository interface {
	Repository
	// AddChunks stores chunks with generated IDs. Every chunk must carry a
	// vector. The parent documents must be held by token: ErrNotFound is
	// returned for a deleted document and ErrRunTokenMismatch for one whose
	// run was released or taken over. Nothing is stored on error.
	AddChunks(ctx context.Context, token string, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// ListChunksByDocument returns a document's chunks ordered by position.
	ListChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// ScanChunks calls fn for every chunk of owner's ready documents. If
	// documentIDs is non-empty only chunks of those documents are visited.
	// Iteration stops at the first error returned by fn.
	ScanChunks(ctx context.Context, owner core.OwnerID, documentIDs []core.ID, fn func(*core.Chunk) error) error

	// ListChunksAfter returns up to limit chunks with ID greater than after,
	// across all owners, ordered by ID. Used by batch jobs.
	ListChunksAfter(ctx context.Context, after core.ID, limit int) ([]*core.Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// UpdateChunkVectors replaces the vectors of existing chunks.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error
}

// KnowledgeRepository provides operations for managing knowledge entries.
type KnowledgeRepository interface {
	Repository
	// AddKnowledgeEntries stores entries with generated IDs under the same
	// run-token rule as ChunkRepository.AddChunks.
	AddKnowledgeEntries(ctx context.Context, token string, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error)

	// ListKnowledgeByDocument returns a document's entries ordered by ID.
	ListKnowledgeByDocument(ctx context.Context, documentID core.ID) ([]*core.KnowledgeEntry, error)
}

// NotebookRepository provides operations for managing notebooks and their document links.
type NotebookRepository interface {
	Repository
	AddNotebook(ctx context.Context, nb *core.Notebook) (*core.Notebook, error)

	// GetNotebook returns ErrNotFound if the notebook doesn't exist.
	GetNotebook(ctx context.Context, id core.ID) (*core.Notebook, error)

	ListNotebooks(ctx context.Context, owner core.OwnerID) ([]*core.Notebook, error)

	// DeleteNotebook removes a notebook, its chat messages, generated
	// content and document links. Linked documents are kept.
	DeleteNotebook(ctx context.Context, id core.ID) error

	// LinkDocument associates a document with a notebook. Linking twice is a no-op.
	LinkDocument(ctx context.Context, notebookID, documentID core.ID) error

	// ListNotebookDocuments returns the IDs of documents linked to a notebook.
	ListNotebookDocuments(ctx context.Context, notebookID core.ID) ([]core.ID, error)
}

// ContentRepository provides operations for generated content.
type ContentRepository interface {
	Repository
	// AddGeneratedContent stores a new artifact. Existing artifacts are never overwritten.
	AddGeneratedContent(ctx context.Context, content *core.GeneratedContent) (*core.GeneratedContent, error)

	// GetGeneratedContent returns ErrNotFound if the artifact doesn't exist.
	GetGeneratedContent(ctx context.Context, id core.ID) (*core.GeneratedContent, error)

	// ListGeneratedContent returns a notebook's artifacts ordered by ID,
	// optionally filtered by content type (empty means all types).
	ListGeneratedContent(ctx context.Context, notebookID core.ID, contentType core.ContentType) ([]*core.GeneratedContent, error)
}

// ChatRepository provides operations for notebook conversations.
type ChatRepository interface {
	Repository
	// AddChatMessage appends a message. IDs increase monotonically, so the
	// ID order is the submission order.
	AddChatMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error)

	// ListChatMessages returns a notebook's messages in ascending order.
	ListChatMessages(ctx context.Context, notebookID core.ID) ([]*core.ChatMessage, error)
}

// CheckpointRepository stores progress markers for batch processors.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for its processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for a processor type, or nil, nil if none exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a processor type.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}
