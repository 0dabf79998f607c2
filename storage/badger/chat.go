package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB.
type ChatRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatRepository) Close() error {
	return r.idSeq.Release()
}

// AddChatMessage appends a message to its notebook's conversation.
func (r *ChatRepository) AddChatMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error) {
	if err := core.ValidateChatMessage(msg); err != nil {
		return nil, err
	}
	err := r.backend.update(func(tx *badger.Txn) error {
		// Sequence IDs are monotonic, so ID order is submission order
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		msg.Id = core.ID(id)
		msg.CreatedAt = time.Now().UTC()

		if err := writeRecord(tx, makeKey(messagePrefix, msg.Id), msg, storage.MarshalChatMessage); err != nil {
			return err
		}
		return tx.Set(makeKey(messageNotebookPrefix, msg.NotebookID, msg.Id), nil)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListChatMessages returns a notebook's messages in ascending ID order.
func (r *ChatRepository) ListChatMessages(ctx context.Context, notebookID core.ID) ([]*core.ChatMessage, error) {
	var result []*core.ChatMessage
	err := r.backend.view(func(tx *badger.Txn) error {
		return scanKeys(tx, makeKey(messageNotebookPrefix, notebookID), func(key, _ []byte) error {
			msg, err := readRecord(tx, makeKey(messagePrefix, trailingID(key)), storage.UnmarshalChatMessage)
			if err != nil {
				return err
			}
			if msg != nil {
				result = append(result, msg)
			}
			return nil
		})
	})
	return result, err
}
