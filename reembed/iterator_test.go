package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepositories(t *testing.T) *badger.Repositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

// addChunks stores n chunks of one ingested document with a placeholder
// vector and returns them in ID order.
func addChunks(t *testing.T, repos *badger.Repositories, n int) []*core.Chunk {
	t.Helper()
	ctx := context.Background()
	doc, err := repos.Documents.AddDocument(ctx, &core.Document{Owner: "alice", Name: "notes", Type: core.DocumentTypeText})
	require.NoError(t, err)
	const token = "seed"
	_, err = repos.Documents.ClaimDocument(ctx, doc.Id, token)
	require.NoError(t, err)

	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			Owner:      "alice",
			DocumentID: doc.Id,
			Position:   i,
			Text:       fmt.Sprintf("chunk %d", i),
			Vector:     []float32{0.5, 0.5},
		}
	}
	added, err := repos.Chunks.AddChunks(ctx, token, chunks...)
	require.NoError(t, err)
	_, err = repos.Documents.FinishDocument(ctx, doc.Id, token, core.Ready(""))
	require.NoError(t, err)
	return added
}

func TestChunkIterator_Basic(t *testing.T) {
	repos := setupTestRepositories(t)
	added := addChunks(t, repos, 5)

	it := NewChunkIterator(repos.Chunks, 2)

	var batches [][]*core.Chunk
	err := it.ForEach(context.Background(), 0, func(batch []*core.Chunk) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)

	var ids []core.ID
	for _, batch := range batches {
		for _, c := range batch {
			ids = append(ids, c.Id)
		}
	}
	for i, c := range added {
		assert.Equal(t, c.Id, ids[i], "chunks should be visited in ID order")
	}
}

func TestChunkIterator_BatchSizes(t *testing.T) {
	tests := []struct {
		name            string
		chunks          int
		batchSize       int
		expectedBatches int
	}{
		{"exact multiple", 6, 3, 2},
		{"remainder", 7, 3, 3},
		{"single batch", 4, 10, 1},
		{"batch of one", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := setupTestRepositories(t)
			addChunks(t, repos, tt.chunks)

			batches, total := 0, 0
			err := NewChunkIterator(repos.Chunks, tt.batchSize).ForEach(context.Background(), 0, func(batch []*core.Chunk) error {
				batches++
				total += len(batch)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.chunks, total)
			assert.Equal(t, tt.expectedBatches, batches)
		})
	}
}

func TestChunkIterator_StartsAfterCursor(t *testing.T) {
	repos := setupTestRepositories(t)
	added := addChunks(t, repos, 5)

	var ids []core.ID
	err := NewChunkIterator(repos.Chunks, 10).ForEach(context.Background(), added[2].Id, func(batch []*core.Chunk) error {
		for _, c := range batch {
			ids = append(ids, c.Id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[3].Id, added[4].Id}, ids)
}

func TestChunkIterator_EmptyDatabase(t *testing.T) {
	repos := setupTestRepositories(t)

	called := false
	err := NewChunkIterator(repos.Chunks, 10).ForEach(context.Background(), 0, func(batch []*core.Chunk) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "callback should not run for an empty database")
}

func TestChunkIterator_ErrorHandling(t *testing.T) {
	repos := setupTestRepositories(t)
	addChunks(t, repos, 6)

	boom := errors.New("stop here")
	calls := 0
	err := NewChunkIterator(repos.Chunks, 2).ForEach(context.Background(), 0, func(batch []*core.Chunk) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestChunkIterator_ContextCancellation(t *testing.T) {
	repos := setupTestRepositories(t)
	addChunks(t, repos, 6)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewChunkIterator(repos.Chunks, 2).ForEach(ctx, 0, func(batch []*core.Chunk) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestChunkIterator_InvalidBatchSize(t *testing.T) {
	repos := setupTestRepositories(t)
	assert.Equal(t, DefaultBatchSize, NewChunkIterator(repos.Chunks, 0).batchSize)
	assert.Equal(t, DefaultBatchSize, NewChunkIterator(repos.Chunks, -5).batchSize)
}
