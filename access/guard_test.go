package access

import (
	"context"
	"testing"

	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/storage"
	"github.com/poiesic/scholia/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGuard(t *testing.T) (*Guard, *badger.Repositories) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	g, err := NewGuard(repos.Documents, repos.Notebooks, repos.Contents)
	require.NoError(t, err)
	return g, repos
}

func TestNewGuard_Validation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewGuard(nil, repos.Notebooks, repos.Contents)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	_, err = NewGuard(repos.Documents, nil, repos.Contents)
	assert.ErrorIs(t, err, ErrNotebookRepositoryRequired)
	_, err = NewGuard(repos.Documents, repos.Notebooks, nil)
	assert.ErrorIs(t, err, ErrContentRepositoryRequired)
}

func TestGuard_Document(t *testing.T) {
	g, repos := setupGuard(t)
	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, &core.Document{Owner: "alice", Name: "notes", Type: core.DocumentTypeText})
	require.NoError(t, err)

	tests := []struct {
		name     string
		owner    core.OwnerID
		id       core.ID
		expected error
	}{
		{"owner", "alice", doc.Id, nil},
		{"unauthenticated", "", doc.Id, core.ErrUnauthenticated},
		{"other owner", "bob", doc.Id, core.ErrForbidden},
		{"missing", "alice", doc.Id + 100, storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Document(ctx, tt.owner, tt.id)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, doc.Id, got.Id)
		})
	}
}

func TestGuard_Documents(t *testing.T) {
	g, repos := setupGuard(t)
	ctx := context.Background()

	a, err := repos.Documents.AddDocument(ctx, &core.Document{Owner: "alice", Name: "a", Type: core.DocumentTypeText})
	require.NoError(t, err)
	b, err := repos.Documents.AddDocument(ctx, &core.Document{Owner: "alice", Name: "b", Type: core.DocumentTypeText})
	require.NoError(t, err)
	foreign, err := repos.Documents.AddDocument(ctx, &core.Document{Owner: "bob", Name: "c", Type: core.DocumentTypeText})
	require.NoError(t, err)

	docs, err := g.Documents(ctx, "alice", []core.ID{b.Id, a.Id})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b.Id, docs[0].Id)
	assert.Equal(t, a.Id, docs[1].Id)

	_, err = g.Documents(ctx, "alice", []core.ID{a.Id, foreign.Id})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = g.Documents(ctx, "alice", []core.ID{a.Id, a.Id})
	assert.Error(t, err)
}

func TestGuard_NotebookAndContent(t *testing.T) {
	g, repos := setupGuard(t)
	ctx := context.Background()

	nb, err := repos.Notebooks.AddNotebook(ctx, &core.Notebook{Owner: "alice", Title: "Biology"})
	require.NoError(t, err)
	content, err := repos.Contents.AddGeneratedContent(ctx, &core.GeneratedContent{
		Owner:      "alice",
		NotebookID: nb.Id,
		Type:       core.ContentTypeFAQ,
		Title:      "FAQ: Biology",
		Body:       "Q and A",
	})
	require.NoError(t, err)

	got, err := g.Notebook(ctx, "alice", nb.Id)
	require.NoError(t, err)
	assert.Equal(t, "Biology", got.Title)

	_, err = g.Notebook(ctx, "bob", nb.Id)
	assert.ErrorIs(t, err, core.ErrForbidden)

	gc, err := g.Content(ctx, "alice", content.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ContentTypeFAQ, gc.Type)

	_, err = g.Content(ctx, "", content.Id)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestGuard_Listable(t *testing.T) {
	g, repos := setupGuard(t)
	ctx := context.Background()

	nb, err := repos.Notebooks.AddNotebook(ctx, &core.Notebook{Owner: "alice", Title: "History"})
	require.NoError(t, err)

	ok, err := g.Listable(ctx, "alice", nb.Id)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, owner := range []core.OwnerID{"", "bob"} {
		ok, err = g.Listable(ctx, owner, nb.Id)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err = g.Listable(ctx, "alice", nb.Id+1)
	require.NoError(t, err)
	assert.False(t, ok)
}
