package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// ContentRepository implements storage.ContentRepository for BadgerDB.
type ContentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(backend *Backend) (*ContentRepository, error) {
	idSeq, err := backend.GetSequence(contentIDSeq)
	if err != nil {
		return nil, err
	}
	return &ContentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ContentRepository) Close() error {
	return r.idSeq.Release()
}

// AddGeneratedContent stores a new artifact under a fresh ID.
func (r *ContentRepository) AddGeneratedContent(ctx context.Context, content *core.GeneratedContent) (*core.GeneratedContent, error) {
	if err := core.ValidateGeneratedContent(content); err != nil {
		return nil, err
	}
	err := r.backend.update(func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		content.Id = core.ID(id)
		content.CreatedAt = time.Now().UTC()
		content.UpdatedAt = content.CreatedAt
		content.SourceDocuments = slices.Clone(content.SourceDocuments)

		if err := writeRecord(tx, makeKey(contentPrefix, content.Id), content, storage.MarshalGeneratedContent); err != nil {
			return err
		}
		return tx.Set(makeKey(contentNotebookPrefix, content.NotebookID, content.Id), nil)
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (r *ContentRepository) GetGeneratedContent(ctx context.Context, id core.ID) (*core.GeneratedContent, error) {
	var result *core.GeneratedContent
	err := r.backend.view(func(tx *badger.Txn) error {
		content, err := readRecord(tx, makeKey(contentPrefix, id), storage.UnmarshalGeneratedContent)
		if err != nil {
			return err
		}
		if content == nil {
			return storage.ErrNotFound
		}
		result = content
		return nil
	})
	return result, err
}

// ListGeneratedContent returns a notebook's artifacts, newest last.
func (r *ContentRepository) ListGeneratedContent(ctx context.Context, notebookID core.ID, contentType core.ContentType) ([]*core.GeneratedContent, error) {
	var result []*core.GeneratedContent
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makeKey(contentNotebookPrefix, notebookID), func(key, _ []byte) error {
			content, err := readRecord(tx, makeKey(contentPrefix, trailingID(key)), storage.UnmarshalGeneratedContent)
			if err != nil {
				return err
			}
			if content == nil {
				return nil
			}
			if contentType != "" && content.Type != contentType {
				return nil
			}
			result = append(result, content)
			return nil
		})
	})
	return result, err
}
