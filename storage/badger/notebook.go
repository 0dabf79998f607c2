package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// NotebookRepository implements storage.NotebookRepository for BadgerDB.
type NotebookRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.NotebookRepository = (*NotebookRepository)(nil)

// NewNotebookRepository creates a new NotebookRepository.
func NewNotebookRepository(backend *Backend) (*NotebookRepository, error) {
	idSeq, err := backend.GetSequence(notebookIDSeq)
	if err != nil {
		return nil, err
	}
	return &NotebookRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *NotebookRepository) Close() error {
	return r.idSeq.Release()
}

func (r *NotebookRepository) AddNotebook(ctx context.Context, nb *core.Notebook) (*core.Notebook, error) {
	if err := core.ValidateNotebook(nb); err != nil {
		return nil, err
	}
	err := r.backend.update(func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		nb.Id = core.ID(id)
		nb.CreatedAt = time.Now().UTC()
		nb.UpdatedAt = nb.CreatedAt

		if err := writeRecord(tx, makeKey(notebookPrefix, nb.Id), nb, storage.MarshalNotebook); err != nil {
			return err
		}
		return tx.Set(makeOwnerKey(notebookOwnerPrefix, nb.Owner, nb.Id), nil)
	})
	if err != nil {
		return nil, err
	}
	return nb, nil
}

func (r *NotebookRepository) GetNotebook(ctx context.Context, id core.ID) (*core.Notebook, error) {
	var result *core.Notebook
	err := r.backend.view(func(tx *badger.Txn) error {
		nb, err := readRecord(tx, makeKey(notebookPrefix, id), storage.UnmarshalNotebook)
		if err != nil {
			return err
		}
		if nb == nil {
			return storage.ErrNotFound
		}
		result = nb
		return nil
	})
	return result, err
}

func (r *NotebookRepository) ListNotebooks(ctx context.Context, owner core.OwnerID) ([]*core.Notebook, error) {
	var result []*core.Notebook
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makePartialOwnerKey(notebookOwnerPrefix, owner), func(key, _ []byte) error {
			nb, err := readRecord(tx, makeKey(notebookPrefix, trailingID(key)), storage.UnmarshalNotebook)
			if err != nil {
				return err
			}
			if nb != nil {
				result = append(result, nb)
			}
			return nil
		})
	})
	return result, err
}

// DeleteNotebook removes a notebook together with its messages, generated
// content and document links.
func (r *NotebookRepository) DeleteNotebook(ctx context.Context, id core.ID) error {
	return r.backend.update(func(tx *badger.Txn) error {
		nb, err := readRecord(tx, makeKey(notebookPrefix, id), storage.UnmarshalNotebook)
		if err != nil {
			return err
		}
		if nb == nil {
			return storage.ErrNotFound
		}

		linkKeys, err := collectKeys(tx, makeKey(notebookDocPrefix, id))
		if err != nil {
			return err
		}
		for _, key := range linkKeys {
			if err := tx.Delete(makeKey(documentNotebookPrefix, trailingID(key), id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		messageKeys, err := collectKeys(tx, makeKey(messageNotebookPrefix, id))
		if err != nil {
			return err
		}
		for _, key := range messageKeys {
			if err := tx.Delete(makeKey(messagePrefix, trailingID(key))); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		contentKeys, err := collectKeys(tx, makeKey(contentNotebookPrefix, id))
		if err != nil {
			return err
		}
		for _, key := range contentKeys {
			if err := tx.Delete(makeKey(contentPrefix, trailingID(key))); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeOwnerKey(notebookOwnerPrefix, nb.Owner, id)); err != nil {
			return err
		}
		return tx.Delete(makeKey(notebookPrefix, id))
	})
}

// LinkDocument associates a document with a notebook.
func (r *NotebookRepository) LinkDocument(ctx context.Context, notebookID, documentID core.ID) error {
	return r.backend.update(func(tx *badger.Txn) error {
		nb, err := readRecord(tx, makeKey(notebookPrefix, notebookID), storage.UnmarshalNotebook)
		if err != nil {
			return err
		}
		doc, err := readRecord(tx, makeKey(documentPrefix, documentID), storage.UnmarshalDocument)
		if err != nil {
			return err
		}
		if nb == nil || doc == nil {
			return storage.ErrNotFound
		}
		if err := tx.Set(makeKey(notebookDocPrefix, notebookID, documentID), nil); err != nil {
			return err
		}
		return tx.Set(makeKey(documentNotebookPrefix, documentID, notebookID), nil)
	})
}

func (r *NotebookRepository) ListNotebookDocuments(ctx context.Context, notebookID core.ID) ([]core.ID, error) {
	var result []core.ID
	err := r.backend.view(func(tx *badger.Txn) error {
		keys, err := collectKeys(tx, makeKey(notebookDocPrefix, notebookID))
		if err != nil {
			return err
		}
		for _, key := range keys {
			result = append(result, trailingID(key))
		}
		return nil
	})
	return result, err
}
