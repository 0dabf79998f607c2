package badger

import (
	"context"
	"testing"

	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func addTestDocument(t *testing.T, repos *Repositories, owner core.OwnerID, name string) *core.Document {
	t.Helper()
	doc, err := repos.Documents.AddDocument(context.Background(), &core.Document{
		Owner: owner,
		Name:  name,
		Type:  core.DocumentTypeText,
	})
	require.NoError(t, err)
	return doc
}

func TestDocumentBasics(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	doc := addTestDocument(t, repos, "u1", "notes.txt")
	assert.NotZero(t, doc.Id)
	assert.True(t, doc.Status.IsProcessing())
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := repos.Documents.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.Name)

	_, err = repos.Documents.GetDocument(ctx, doc.Id+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repos.Documents.AddDocument(ctx, &core.Document{Name: "x", Type: core.DocumentTypeText})
	assert.ErrorIs(t, err, core.ErrEmptyOwner)
}

func TestListDocuments_ScopedByOwner(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	addTestDocument(t, repos, "ab", "a1")
	addTestDocument(t, repos, "abc", "b1")
	addTestDocument(t, repos, "ab", "a2")

	docs, err := repos.Documents.ListDocuments(ctx, "ab")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a1", docs[0].Name)
	assert.Equal(t, "a2", docs[1].Name)

	docs, err = repos.Documents.ListDocuments(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpdateDocument_PreservesStatus(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	doc := addTestDocument(t, repos, "u1", "draft")

	_, err := repos.Documents.ClaimDocument(ctx, doc.Id, "run-1")
	require.NoError(t, err)

	text := "edited text"
	updated, err := repos.Documents.UpdateDocument(ctx, &core.Document{Id: doc.Id, Name: "final", Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Name)
	assert.Equal(t, "edited text", updated.TextOrEmpty())
	assert.True(t, updated.Status.IsProcessing())
	assert.Equal(t, "run-1", updated.RunToken)
}

func TestClaimDocument(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	doc := addTestDocument(t, repos, "u1", "doc")

	claimed, err := repos.Documents.ClaimDocument(ctx, doc.Id, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", claimed.RunToken)

	// Reclaiming with the same token is allowed
	_, err = repos.Documents.ClaimDocument(ctx, doc.Id, "run-1")
	require.NoError(t, err)

	_, err = repos.Documents.ClaimDocument(ctx, doc.Id, "run-2")
	assert.ErrorIs(t, err, storage.ErrAlreadyClaimed)

	_, err = repos.Documents.FinishDocument(ctx, doc.Id, "run-1", core.Ready(""))
	require.NoError(t, err)

	_, err = repos.Documents.ClaimDocument(ctx, doc.Id, "run-3")
	assert.ErrorIs(t, err, storage.ErrNotProcessing)

	_, err = repos.Documents.ClaimDocument(ctx, doc.Id+100, "run-3")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFinishDocument(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	doc := addTestDocument(t, repos, "u1", "doc")

	_, err := repos.Documents.ClaimDocument(ctx, doc.Id, "run-1")
	require.NoError(t, err)

	require.NoError(t, repos.Documents.SetDocumentText(ctx, doc.Id, "run-1", "body"))
	assert.ErrorIs(t, repos.Documents.SetDocumentText(ctx, doc.Id, "other", "body"), storage.ErrRunTokenMismatch)

	_, err = repos.Documents.FinishDocument(ctx, doc.Id, "other", core.Ready(""))
	assert.ErrorIs(t, err, storage.ErrRunTokenMismatch)

	finished, err := repos.Documents.FinishDocument(ctx, doc.Id, "run-1", core.Failed("boom"))
	require.NoError(t, err)
	assert.True(t, finished.Status.IsFailed())
	assert.Equal(t, "boom", finished.Status.FailureMessage())
	assert.Empty(t, finished.RunToken)
	assert.Equal(t, "body", finished.TextOrEmpty())

	// The token is released with the terminal status
	_, err = repos.Documents.FinishDocument(ctx, doc.Id, "run-1", core.Ready(""))
	assert.ErrorIs(t, err, storage.ErrRunTokenMismatch)
}

func TestResetDocument_PurgesDerivedRecords(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	doc := addTestDocument(t, repos, "u1", "doc")

	_, err := repos.Documents.ClaimDocument(ctx, doc.Id, "run-1")
	require.NoError(t, err)
	require.NoError(t, repos.Documents.SetDocumentText(ctx, doc.Id, "run-1", "kept text"))
	_, err = repos.Chunks.AddChunks(ctx, "run-1", &core.Chunk{Owner: "u1", DocumentID: doc.Id, Text: "chunk", Vector: []float32{1}})
	require.NoError(t, err)
	_, err = repos.Knowledge.AddKnowledgeEntries(ctx, "run-1", &core.KnowledgeEntry{Owner: "u1", DocumentID: doc.Id, Summary: "s"})
	require.NoError(t, err)

	// Only failed documents can be reset
	_, err = repos.Documents.ResetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = repos.Documents.FinishDocument(ctx, doc.Id, "run-1", core.Failed("boom"))
	require.NoError(t, err)

	reset, err := repos.Documents.ResetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.True(t, reset.Status.IsProcessing())
	assert.Equal(t, "kept text", reset.TextOrEmpty())

	chunks, err := repos.Chunks.ListChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	entries, err := repos.Knowledge.ListKnowledgeByDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, entries)

	count := 0
	err = repos.Chunks.ScanChunks(ctx, "u1", nil, func(*core.Chunk) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteDocument_Cascades(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	doc := addClaimedDocument(t, repos, "u1", "doc")
	nb, err := repos.Notebooks.AddNotebook(ctx, &core.Notebook{Owner: "u1", Title: "nb"})
	require.NoError(t, err)
	require.NoError(t, repos.Notebooks.LinkDocument(ctx, nb.Id, doc.Id))
	_, err = repos.Chunks.AddChunks(ctx, testRunToken, &core.Chunk{Owner: "u1", DocumentID: doc.Id, Text: "chunk", Vector: []float32{1}})
	require.NoError(t, err)

	require.NoError(t, repos.Documents.DeleteDocument(ctx, doc.Id))

	_, err = repos.Documents.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	linked, err := repos.Notebooks.ListNotebookDocuments(ctx, nb.Id)
	require.NoError(t, err)
	assert.Empty(t, linked)

	count, err := repos.Chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	docs, err := repos.Documents.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.ErrorIs(t, repos.Documents.DeleteDocument(ctx, doc.Id), storage.ErrNotFound)
}

func TestReleaseClaims(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	stranded := addClaimedDocument(t, repos, "u1", "stranded")
	unclaimed := addTestDocument(t, repos, "u2", "never scheduled")
	done := addClaimedDocument(t, repos, "u1", "done")
	finishTestDocument(t, repos, done, core.Ready(""))
	broken := addClaimedDocument(t, repos, "u1", "broken")
	finishTestDocument(t, repos, broken, core.Failed("boom"))

	ids, err := repos.Documents.ReleaseClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{stranded.Id, unclaimed.Id}, ids)

	got, err := repos.Documents.GetDocument(ctx, stranded.Id)
	require.NoError(t, err)
	assert.Empty(t, got.RunToken)
	assert.True(t, got.Status.IsProcessing())

	// A new run can take over the released document
	_, err = repos.Documents.ClaimDocument(ctx, stranded.Id, "run-2")
	require.NoError(t, err)
	_, err = repos.Chunks.AddChunks(ctx, testRunToken, &core.Chunk{Owner: "u1", DocumentID: stranded.Id, Text: "late", Vector: []float32{1}})
	assert.ErrorIs(t, err, storage.ErrRunTokenMismatch)

	for _, doc := range []*core.Document{done, broken} {
		got, err := repos.Documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.False(t, got.Status.IsProcessing())
	}
}
