// Package access enforces owner scoping for every entity read by scholia.
//
// A Guard loads an entity and compares its owner with the caller. An empty
// caller is rejected with core.ErrUnauthenticated, a missing entity with
// storage.ErrNotFound and a foreign entity with core.ErrForbidden.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

var (
	// ErrDocumentRepositoryRequired indicates that a document repository is required.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")
	// ErrNotebookRepositoryRequired indicates that a notebook repository is required.
	ErrNotebookRepositoryRequired = errors.New("notebook repository is required")
	// ErrContentRepositoryRequired indicates that a content repository is required.
	ErrContentRepositoryRequired = errors.New("content repository is required")
)

// Guard checks ownership of documents, notebooks and generated content.
type Guard struct {
	documents storage.DocumentRepository
	notebooks storage.NotebookRepository
	contents  storage.ContentRepository
}

// NewGuard creates a Guard over the given repositories.
func NewGuard(documents storage.DocumentRepository, notebooks storage.NotebookRepository, contents storage.ContentRepository) (*Guard, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if notebooks == nil {
		return nil, ErrNotebookRepositoryRequired
	}
	if contents == nil {
		return nil, ErrContentRepositoryRequired
	}
	return &Guard{documents: documents, notebooks: notebooks, contents: contents}, nil
}

// Authenticated returns core.ErrUnauthenticated for an empty owner.
func Authenticated(owner core.OwnerID) error {
	if owner == "" {
		return core.ErrUnauthenticated
	}
	return nil
}

// Authorize reports whether owner may access entity.
func Authorize(owner core.OwnerID, entity core.Owned) error {
	if err := Authenticated(owner); err != nil {
		return err
	}
	if entity.OwnedBy() != owner {
		return core.ErrForbidden
	}
	return nil
}

// load fetches an entity and authorizes it in one step.
func load[T core.Owned](ctx context.Context, owner core.OwnerID, get func(context.Context, core.ID) (T, error), id core.ID) (T, error) {
	var zero T
	if err := Authenticated(owner); err != nil {
		return zero, err
	}
	entity, err := get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := Authorize(owner, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Document returns the document if owner may read it.
func (g *Guard) Document(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Document, error) {
	return load(ctx, owner, g.documents.GetDocument, id)
}

// Documents authorizes every id and returns the documents in the same order.
// Duplicate ids are rejected.
func (g *Guard) Documents(ctx context.Context, owner core.OwnerID, ids []core.ID) ([]*core.Document, error) {
	seen := make(map[core.ID]struct{}, len(ids))
	docs := make([]*core.Document, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate document %d", core.ErrInvalidGeneratedContent, id)
		}
		seen[id] = struct{}{}
		doc, err := g.Document(ctx, owner, id)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Notebook returns the notebook if owner may read it.
func (g *Guard) Notebook(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Notebook, error) {
	return load(ctx, owner, g.notebooks.GetNotebook, id)
}

// Content returns the generated content if owner may read it.
func (g *Guard) Content(ctx context.Context, owner core.OwnerID, id core.ID) (*core.GeneratedContent, error) {
	return load(ctx, owner, g.contents.GetGeneratedContent, id)
}

// Listable reports whether owner may list the children of a notebook.
// Unauthenticated callers, missing notebooks and foreign notebooks all
// yield false without an error; other storage errors are returned.
func (g *Guard) Listable(ctx context.Context, owner core.OwnerID, notebookID core.ID) (bool, error) {
	_, err := g.Notebook(ctx, owner, notebookID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrForbidden),
		errors.Is(err, storage.ErrNotFound):
		return false, nil
	}
	return false, err
}
