package server

import (
	"context"

	"github.com/poiesic/scholia"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/generation"
	"github.com/poiesic/scholia/metrics"
)

// Service is the subset of scholia.Database the API needs.
type Service interface {
	CreateDocument(ctx context.Context, owner core.OwnerID, req scholia.CreateDocumentRequest) (*core.Document, error)
	GetDocument(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Document, error)
	ListDocuments(ctx context.Context, owner core.OwnerID) ([]*core.Document, error)
	UpdateDocument(ctx context.Context, owner core.OwnerID, id core.ID, req scholia.UpdateDocumentRequest) (*core.Document, error)
	DeleteDocument(ctx context.Context, owner core.OwnerID, id core.ID) error
	RetryDocument(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Document, error)

	CreateNotebook(ctx context.Context, owner core.OwnerID, req scholia.CreateNotebookRequest) (*core.Notebook, error)
	GetNotebook(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Notebook, error)
	ListNotebooks(ctx context.Context, owner core.OwnerID) ([]*core.Notebook, error)
	DeleteNotebook(ctx context.Context, owner core.OwnerID, id core.ID) error
	AddDocumentToNotebook(ctx context.Context, owner core.OwnerID, notebookID, documentID core.ID) error
	ListNotebookDocuments(ctx context.Context, owner core.OwnerID, notebookID core.ID) ([]*core.Document, error)

	SendMessage(ctx context.Context, owner core.OwnerID, notebookID core.ID, query string) (*generation.Turn, error)
	ListMessages(ctx context.Context, owner core.OwnerID, notebookID core.ID) ([]*core.ChatMessage, error)

	GenerateContent(ctx context.Context, owner core.OwnerID, req scholia.GenerateContentRequest) (*core.GeneratedContent, error)
	ListGeneratedContent(ctx context.Context, owner core.OwnerID, notebookID core.ID, contentType core.ContentType) ([]*core.GeneratedContent, error)
	GetGeneratedContent(ctx context.Context, owner core.OwnerID, id core.ID) (*core.GeneratedContent, error)

	Search(ctx context.Context, owner core.OwnerID, query string, k int, documentIDs ...core.ID) ([]*core.SearchResult, error)

	Metrics() *metrics.Metrics
}

var _ Service = (*scholia.Database)(nil)
