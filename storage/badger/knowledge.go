package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	idSeq, err := backend.GetSequence(knowledgeIDSeq)
	if err != nil {
		return nil, err
	}
	return &KnowledgeRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *KnowledgeRepository) Close() error {
	return r.idSeq.Release()
}

// AddKnowledgeEntries stores entries with generated IDs. Like AddChunks it
// requires the parent document to be held by token.
func (r *KnowledgeRepository) AddKnowledgeEntries(ctx context.Context, token string, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error) {
	err := retryConflicts(func() error {
		return r.backend.update(func(tx *badger.Txn) error {
			now := time.Now().UTC()
			for _, entry := range entries {
				if entry.Owner == "" {
					return core.ErrEmptyOwner
				}
				if _, err := heldDocument(tx, entry.DocumentID, token); err != nil {
					return err
				}
				id, err := nextID(r.idSeq)
				if err != nil {
					return err
				}
				entry.Id = core.ID(id)
				entry.CreatedAt = now

				if err := writeRecord(tx, makeKey(knowledgePrefix, entry.Id), entry, storage.MarshalKnowledgeEntry); err != nil {
					return err
				}
				if err := tx.Set(makeKey(knowledgeDocPrefix, entry.DocumentID, entry.Id), nil); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, mapConflict(err, storage.ErrRunTokenMismatch)
	}
	return entries, nil
}

// ListKnowledgeByDocument returns a document's entries ordered by ID.
func (r *KnowledgeRepository) ListKnowledgeByDocument(ctx context.Context, documentID core.ID) ([]*core.KnowledgeEntry, error) {
	var result []*core.KnowledgeEntry
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makeKey(knowledgeDocPrefix, documentID), func(key, _ []byte) error {
			entry, err := readRecord(tx, makeKey(knowledgePrefix, trailingID(key)), storage.UnmarshalKnowledgeEntry)
			if err != nil {
				return err
			}
			if entry != nil {
				result = append(result, entry)
			}
			return nil
		})
	})
	return result, err
}
