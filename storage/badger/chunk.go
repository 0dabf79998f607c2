package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}
	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// AddChunks stores chunks along with their document and owner indices. The
// parent document of every chunk must exist and be held by token, checked in
// the same transaction as the write.
func (r *ChunkRepository) AddChunks(ctx context.Context, token string, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, err
		}
	}
	err := retryConflicts(func() error {
		return r.backend.update(func(tx *badger.Txn) error {
			held := make(map[core.ID]bool)
			now := time.Now().UTC()
			for _, chunk := range chunks {
				if !held[chunk.DocumentID] {
					if _, err := heldDocument(tx, chunk.DocumentID, token); err != nil {
						return err
					}
					held[chunk.DocumentID] = true
				}
				id, err := nextID(r.idSeq)
				if err != nil {
					return err
				}
				chunk.Id = core.ID(id)
				chunk.CreatedAt = now

				if err := writeRecord(tx, makeKey(chunkPrefix, chunk.Id), chunk, storage.MarshalChunk); err != nil {
					return err
				}
				if err := tx.Set(makeKey(chunkDocumentPrefix, chunk.DocumentID, chunk.Id), nil); err != nil {
					return err
				}
				// The owner index carries the document ID so scans can filter without decoding.
				ownerKey := makeOwnerKey(chunkOwnerPrefix, chunk.Owner, chunk.Id)
				if err := tx.Set(ownerKey, storage.MarshalID(chunk.DocumentID)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, mapConflict(err, storage.ErrRunTokenMismatch)
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.view(func(tx *badger.Txn) error {
		chunk, err := readRecord(tx, makeKey(chunkPrefix, id), storage.UnmarshalChunk)
		if err != nil {
			return err
		}
		if chunk == nil {
			return storage.ErrNotFound
		}
		result = chunk
		return nil
	})
	return result, err
}

// ListChunksByDocument returns a document's chunks ordered by position.
func (r *ChunkRepository) ListChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makeKey(chunkDocumentPrefix, documentID), func(key, _ []byte) error {
			chunk, err := readRecord(tx, makeKey(chunkPrefix, trailingID(key)), storage.UnmarshalChunk)
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(result, func(a, b *core.Chunk) int {
		return a.Position - b.Position
	})
	return result, nil
}

// ScanChunks visits every chunk of the owner's ready documents, optionally
// restricted to documentIDs. Chunks of processing and failed documents are
// skipped.
func (r *ChunkRepository) ScanChunks(ctx context.Context, owner core.OwnerID, documentIDs []core.ID, fn func(*core.Chunk) error) error {
	return r.backend.view(func(tx *badger.Txn) error {
		ready := make(map[core.ID]bool)
		return scanKeys(tx, makePartialOwnerKey(chunkOwnerPrefix, owner), func(key, value []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docID, err := storage.UnmarshalID(value)
			if err != nil {
				return err
			}
			if len(documentIDs) > 0 && !slices.Contains(documentIDs, docID) {
				return nil
			}
			isReady, seen := ready[docID]
			if !seen {
				doc, err := readRecord(tx, makeKey(documentPrefix, docID), storage.UnmarshalDocument)
				if err != nil {
					return err
				}
				isReady = doc != nil && doc.Status.IsReady()
				ready[docID] = isReady
			}
			if !isReady {
				return nil
			}
			chunk, err := readRecord(tx, makeKey(chunkPrefix, trailingID(key)), storage.UnmarshalChunk)
			if err != nil {
				return err
			}
			if chunk == nil {
				return nil
			}
			return fn(chunk)
		})
	})
}

// ListChunksAfter returns up to limit chunks with ID greater than after.
func (r *ChunkRepository) ListChunksAfter(ctx context.Context, after core.ID, limit int) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeKey(chunkPrefix, after+1)); iter.Valid(); iter.Next() {
			if limit > 0 && len(result) >= limit {
				break
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var decodeErr error
				chunk, decodeErr = storage.UnmarshalChunk(val)
				return decodeErr
			})
			if err != nil {
				return err
			}
			result = append(result, chunk)
		}
		return nil
	})
	return result, err
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := r.backend.view(func(tx *badger.Txn) error {
		keys, err := collectKeys(tx, []byte(chunkPrefix))
		count = len(keys)
		return err
	})
	return count, err
}

// UpdateChunkVectors replaces the vectors of existing chunks.
func (r *ChunkRepository) UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error {
	return r.backend.update(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if len(chunk.Vector) == 0 {
				return core.ErrEmptyVector
			}
			key := makeKey(chunkPrefix, chunk.Id)
			stored, err := readRecord(tx, key, storage.UnmarshalChunk)
			if err != nil {
				return err
			}
			if stored == nil {
				return storage.ErrNotFound
			}
			stored.Vector = chunk.Vector
			if err := writeRecord(tx, key, stored, storage.MarshalChunk); err != nil {
				return err
			}
		}
		return nil
	})
}
