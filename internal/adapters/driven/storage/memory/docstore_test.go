package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func newDoc(id, ownerID string, uploadedAt time.Time) *domain.Document {
	return &domain.Document{
		ID:         id,
		OwnerID:    ownerID,
		Filename:   id + ".txt",
		Content:    "Cats are mammals.",
		Checksum:   "sum-" + id,
		Vocabulary: []string{"cats", "are", "mammals"},
		Chunks: []domain.Chunk{
			{Text: "Cats are mammals.", Index: 0, EndPos: 17, Embedding: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		},
		UploadedAt: uploadedAt,
	}
}

func TestDocumentStore_CreateAndFind(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.CreateDocument(ctx, newDoc("doc-1", "user-1", time.Now())))

	doc, err := store.FindDocument(ctx, "doc-1", "user-1")
	require.NoError(t, err)
	assert.True(t, doc.Active)
	assert.Equal(t, 1, doc.ChunkCount)
	require.Len(t, doc.Chunks, 1)
	assert.Equal(t, "Cats are mammals.", doc.Chunks[0].Text)
}

func TestDocumentStore_CreateRejectsIncomplete(t *testing.T) {
	store := NewDocumentStore()
	assert.ErrorIs(t, store.CreateDocument(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.CreateDocument(context.Background(), &domain.Document{ID: "x"}), domain.ErrInvalidInput)
}

func TestDocumentStore_ReturnsCopies(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	original := newDoc("doc-1", "user-1", time.Now())
	require.NoError(t, store.CreateDocument(ctx, original))
	original.Chunks[0].Embedding[0] = 99

	doc, err := store.FindDocument(ctx, "doc-1", "user-1")
	require.NoError(t, err)
	doc.Vocabulary[0] = "changed"
	assert.InDelta(t, 1.0/3, doc.Chunks[0].Embedding[0], 1e-12)

	again, err := store.FindDocument(ctx, "doc-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cats", again.Vocabulary[0])
}

func TestDocumentStore_OwnerScoping(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("doc-1", "user-1", time.Now())))

	_, err := store.FindDocument(ctx, "doc-1", "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.DeactivateDocument(ctx, "doc-1", "user-2"), domain.ErrNotFound)
	assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1", "user-2"), domain.ErrNotFound)
}

func TestDocumentStore_ListProjection(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.CreateDocument(ctx, newDoc("old", "user-1", base)))
	require.NoError(t, store.CreateDocument(ctx, newDoc("new", "user-1", base.Add(time.Minute))))
	require.NoError(t, store.CreateDocument(ctx, newDoc("theirs", "user-2", base)))

	docs, err := store.ListDocuments(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
	assert.Empty(t, docs[0].Content)
	assert.Nil(t, docs[0].Chunks)
	assert.Equal(t, 1, docs[0].ChunkCount)
}

func TestDocumentStore_ChecksumAndDeactivate(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, newDoc("doc-1", "user-1", time.Now())))

	found, err := store.FindDocumentByChecksum(ctx, "user-1", "sum-doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", found.ID)

	require.NoError(t, store.DeactivateDocument(ctx, "doc-1", "user-1"))

	_, err = store.FindDocumentByChecksum(ctx, "user-1", "sum-doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.FindDocument(ctx, "doc-1", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := store.ListDocuments(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Hard delete still works on an inactive document
	require.NoError(t, store.DeleteDocument(ctx, "doc-1", "user-1"))
}
