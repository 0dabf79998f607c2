package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}
	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument stores a new document.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	err := r.backend.update(func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		doc.Id = core.ID(id)
		doc.CreatedAt = time.Now().UTC()
		doc.UpdatedAt = doc.CreatedAt
		if doc.Status.State() == 0 {
			doc.Status = core.Processing()
		}

		if err := writeRecord(tx, makeKey(documentPrefix, doc.Id), doc, storage.MarshalDocument); err != nil {
			return err
		}
		return tx.Set(makeOwnerKey(documentOwnerPrefix, doc.Owner, doc.Id), nil)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.view(func(tx *badger.Txn) error {
		var err error
		result, err = r.mustRead(tx, id)
		return err
	})
	return result, err
}

// ListDocuments returns the owner's documents ordered by ID.
func (r *DocumentRepository) ListDocuments(ctx context.Context, owner core.OwnerID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makePartialOwnerKey(documentOwnerPrefix, owner), func(key, _ []byte) error {
			doc, err := readRecord(tx, makeKey(documentPrefix, trailingID(key)), storage.UnmarshalDocument)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
			return nil
		})
	})
	return result, err
}

// UpdateDocument stores user edits of name and text.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	var result *core.Document
	err := r.backend.update(func(tx *badger.Txn) error {
		stored, err := r.mustRead(tx, doc.Id)
		if err != nil {
			return err
		}
		stored.Name = doc.Name
		stored.Text = doc.Text
		stored.UpdatedAt = time.Now().UTC()
		if err := core.ValidateDocument(stored); err != nil {
			return err
		}
		result = stored
		return writeRecord(tx, makeKey(documentPrefix, stored.Id), stored, storage.MarshalDocument)
	})
	return result, err
}

// DeleteDocument removes a document and everything derived from it.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.update(func(tx *badger.Txn) error {
		doc, err := r.mustRead(tx, id)
		if err != nil {
			return err
		}
		if err := purgeDerived(tx, doc); err != nil {
			return err
		}

		// Notebook links in both directions
		linkKeys, err := collectKeys(tx, makeKey(documentNotebookPrefix, id))
		if err != nil {
			return err
		}
		for _, key := range linkKeys {
			if err := tx.Delete(makeKey(notebookDocPrefix, trailingID(key), id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeOwnerKey(documentOwnerPrefix, doc.Owner, id)); err != nil {
			return err
		}
		return tx.Delete(makeKey(documentPrefix, id))
	})
}

// ClaimDocument installs token as the document's run token.
func (r *DocumentRepository) ClaimDocument(ctx context.Context, id core.ID, token string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.update(func(tx *badger.Txn) error {
		doc, err := r.mustRead(tx, id)
		if err != nil {
			return err
		}
		if !doc.Status.IsProcessing() {
			return storage.ErrNotProcessing
		}
		if doc.RunToken != "" && doc.RunToken != token {
			return storage.ErrAlreadyClaimed
		}
		doc.RunToken = token
		doc.UpdatedAt = time.Now().UTC()
		result = doc
		return writeRecord(tx, makeKey(documentPrefix, id), doc, storage.MarshalDocument)
	})
	if err != nil {
		return nil, mapConflict(err, storage.ErrAlreadyClaimed)
	}
	return result, nil
}

// SetDocumentText stores extracted text for a claimed document.
func (r *DocumentRepository) SetDocumentText(ctx context.Context, id core.ID, token string, text string) error {
	return r.backend.update(func(tx *badger.Txn) error {
		doc, err := r.mustRead(tx, id)
		if err != nil {
			return err
		}
		if doc.RunToken != token {
			return storage.ErrRunTokenMismatch
		}
		doc.Text = &text
		doc.UpdatedAt = time.Now().UTC()
		return writeRecord(tx, makeKey(documentPrefix, id), doc, storage.MarshalDocument)
	})
}

// FinishDocument moves a claimed document to a terminal status.
func (r *DocumentRepository) FinishDocument(ctx context.Context, id core.ID, token string, status core.Status) (*core.Document, error) {
	var result *core.Document
	err := r.backend.update(func(tx *badger.Txn) error {
		doc, err := r.mustRead(tx, id)
		if err != nil {
			return err
		}
		if token == "" || doc.RunToken != token {
			return storage.ErrRunTokenMismatch
		}
		if err := core.ValidateTransition(doc.Status.State(), status.State()); err != nil {
			return err
		}
		doc.Status = status
		doc.RunToken = ""
		doc.UpdatedAt = time.Now().UTC()
		result = doc
		return writeRecord(tx, makeKey(documentPrefix, id), doc, storage.MarshalDocument)
	})
	if err != nil {
		return nil, mapConflict(err, storage.ErrRunTokenMismatch)
	}
	return result, nil
}

// ResetDocument purges a failed document's derived records and returns it to processing.
func (r *DocumentRepository) ResetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.update(func(tx *badger.Txn) error {
		doc, err := r.mustRead(tx, id)
		if err != nil {
			return err
		}
		if err := core.ValidateTransition(doc.Status.State(), core.StateProcessing); err != nil {
			return err
		}
		if err := purgeDerived(tx, doc); err != nil {
			return err
		}
		doc.Status = core.Processing()
		doc.RunToken = ""
		doc.UpdatedAt = time.Now().UTC()
		result = doc
		return writeRecord(tx, makeKey(documentPrefix, id), doc, storage.MarshalDocument)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseClaims clears the run token of every processing document and
// returns their IDs in ID order.
func (r *DocumentRepository) ReleaseClaims(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.update(func(tx *badger.Txn) error {
		var stranded []*core.Document
		err := scanKeys(tx, []byte(documentPrefix), func(_, value []byte) error {
			doc, err := storage.UnmarshalDocument(value)
			if err != nil {
				return err
			}
			if doc.Status.IsProcessing() {
				stranded = append(stranded, doc)
			}
			return nil
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, doc := range stranded {
			ids = append(ids, doc.Id)
			if doc.RunToken == "" {
				continue
			}
			doc.RunToken = ""
			doc.UpdatedAt = now
			if err := writeRecord(tx, makeKey(documentPrefix, doc.Id), doc, storage.MarshalDocument); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapConflict(err, storage.ErrAlreadyClaimed)
	}
	return ids, nil
}

// mustRead reads a document and converts a missing key into ErrNotFound.
func (r *DocumentRepository) mustRead(tx *badger.Txn, id core.ID) (*core.Document, error) {
	doc, err := readRecord(tx, makeKey(documentPrefix, id), storage.UnmarshalDocument)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// heldDocument reads a document inside tx and verifies that token holds its
// ingestion run.
func heldDocument(tx *badger.Txn, id core.ID, token string) (*core.Document, error) {
	doc, err := readRecord(tx, makeKey(documentPrefix, id), storage.UnmarshalDocument)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, storage.ErrNotFound
	}
	if token == "" || doc.RunToken != token {
		return nil, storage.ErrRunTokenMismatch
	}
	return doc, nil
}

// purgeDerived deletes every chunk and knowledge entry of doc, with their indices.
func purgeDerived(tx *badger.Txn, doc *core.Document) error {
	chunkKeys, err := collectKeys(tx, makeKey(chunkDocumentPrefix, doc.Id))
	if err != nil {
		return err
	}
	for _, key := range chunkKeys {
		chunkID := trailingID(key)
		if err := tx.Delete(makeKey(chunkPrefix, chunkID)); err != nil {
			return err
		}
		if err := tx.Delete(makeOwnerKey(chunkOwnerPrefix, doc.Owner, chunkID)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
	}

	knowledgeKeys, err := collectKeys(tx, makeKey(knowledgeDocPrefix, doc.Id))
	if err != nil {
		return err
	}
	for _, key := range knowledgeKeys {
		if err := tx.Delete(makeKey(knowledgePrefix, trailingID(key))); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
