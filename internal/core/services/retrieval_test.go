package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/termvec"
)

var petsVocabulary = []string{"the", "cat", "ran"}

func indexedChunks(vocab []string, texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	pos := 0
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			Text:      text,
			Index:     i,
			StartPos:  pos,
			EndPos:    pos + len([]rune(text)),
			Embedding: termvec.Embed(text, vocab),
		}
		pos = chunks[i].EndPos
	}
	return chunks
}

func seedDocument(t *testing.T, store *memory.DocumentStore, id string, vocab []string, chunks []domain.Chunk) {
	t.Helper()
	require.NoError(t, store.CreateDocument(context.Background(), &domain.Document{
		ID:         id,
		OwnerID:    "user-1",
		Filename:   id + ".txt",
		Vocabulary: vocab,
		Chunks:     chunks,
	}))
}

func retrievalSettings() domain.RetrievalSettings {
	return domain.RetrievalSettings{
		TopK:           domain.DefaultTopK,
		Threshold:      domain.DefaultThreshold,
		FallbackChunks: domain.DefaultFallbackChunks,
		VocabularySize: 3,
	}
}

func TestRetrievalService_Retrieve(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "pets", petsVocabulary,
		indexedChunks(petsVocabulary, "the cat sat", "the cat ran", "a dog ran"))
	svc := NewRetrievalService(store, retrievalSettings())

	result, err := svc.Retrieve(context.Background(), "pets", "user-1", "cat")
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, petsVocabulary, result.Vocabulary)
	require.Len(t, result.Selected, 2)
	assert.Equal(t, 0, result.Selected[0].Chunk.Index)
	assert.InDelta(t, 0.7071, result.Selected[0].Score, 1e-3)
	assert.Equal(t, 1, result.Selected[1].Chunk.Index)
	assert.InDelta(t, 0.5774, result.Selected[1].Score, 1e-3)
	assert.Equal(t, "the cat sat\n\nthe cat ran", result.Context)
}

func TestRetrievalService_Retrieve_Fallback(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "pets", petsVocabulary,
		indexedChunks(petsVocabulary, "the cat sat", "the cat ran", "a dog ran", "the end"))
	svc := NewRetrievalService(store, retrievalSettings())

	result, err := svc.Retrieve(context.Background(), "pets", "user-1", "zebra")
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Len(t, result.Selected, 3)
	for i, sc := range result.Selected {
		assert.Equal(t, i, sc.Chunk.Index)
	}
	assert.Equal(t, "the cat sat\n\nthe cat ran\n\na dog ran", result.Context)
}

func TestRetrievalService_Retrieve_HintKeywords(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "pets", petsVocabulary,
		indexedChunks(petsVocabulary, "the cat sat", "the cat ran", "a dog ran"))
	settings := retrievalSettings()
	settings.HintKeywords = []string{"ran"}
	svc := NewRetrievalService(store, settings)

	result, err := svc.Retrieve(context.Background(), "pets", "user-1", "cat")
	require.NoError(t, err)

	require.Len(t, result.Selected, 3)
	assert.Equal(t, 2, result.Selected[0].Chunk.Index)
	assert.InDelta(t, 1.0, result.Selected[0].Score, 1e-9)
	assert.Equal(t, 0, result.Selected[1].Chunk.Index)
	assert.Equal(t, 1, result.Selected[2].Chunk.Index)
}

func TestRetrievalService_Retrieve_RebuildsMissingVocabulary(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "legacy", nil,
		indexedChunks(petsVocabulary, "the cat sat", "the cat ran", "a dog ran"))
	svc := NewRetrievalService(store, retrievalSettings())

	result, err := svc.Retrieve(context.Background(), "legacy", "user-1", "cat")
	require.NoError(t, err)

	assert.Equal(t, petsVocabulary, result.Vocabulary)
	assert.Equal(t, "the cat sat\n\nthe cat ran", result.Context)
}

func TestRetrievalService_Retrieve_NotFound(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "pets", petsVocabulary, indexedChunks(petsVocabulary, "the cat sat"))
	svc := NewRetrievalService(store, retrievalSettings())

	_, err := svc.Retrieve(context.Background(), "missing", "user-1", "cat")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Retrieve(context.Background(), "pets", "user-2", "cat")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRetrievalService_RetrieveContext(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	store := memory.NewDocumentStore()
	seedDocument(t, store, "pets", petsVocabulary,
		indexedChunks(petsVocabulary, "the cat sat", "the cat ran", "a dog ran"))
	seedDocument(t, store, "blank", nil, nil)
	svc := NewRetrievalService(store, retrievalSettings())
	ctx := context.Background()

	assert.Equal(t, "the cat sat\n\nthe cat ran", svc.RetrieveContext(ctx, "pets", "user-1", "cat"))
	assert.NotEmpty(t, svc.RetrieveContext(ctx, "pets", "user-1", "zebra"))
	assert.Empty(t, svc.RetrieveContext(ctx, "missing", "user-1", "cat"))
	assert.Empty(t, svc.RetrieveContext(ctx, "blank", "user-1", "cat"))

	stats := svc.Stats()
	assert.Equal(t, int64(2), stats.Served)
	assert.Equal(t, int64(1), stats.Fallbacks)
	assert.Equal(t, map[string]int64{
		CauseNotFound:      1,
		CauseEmptyDocument: 1,
	}, stats.Degraded)

	assert.Contains(t, buf.String(), "cause=not_found")
	assert.Contains(t, buf.String(), "document=missing")
}

type failingDocumentStore struct {
	*memory.DocumentStore
	err   error
	panic bool
}

func (s *failingDocumentStore) FindDocument(context.Context, string, string) (*domain.Document, error) {
	if s.panic {
		panic("store exploded")
	}
	return nil, s.err
}

func TestRetrievalService_RetrieveContext_Errors(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	store := &failingDocumentStore{DocumentStore: memory.NewDocumentStore(), err: errors.New("connection reset")}
	svc := NewRetrievalService(store, retrievalSettings())

	assert.Empty(t, svc.RetrieveContext(context.Background(), "doc", "user-1", "cat"))

	store.panic = true
	assert.Empty(t, svc.RetrieveContext(context.Background(), "doc", "user-1", "cat"))

	stats := svc.Stats()
	assert.Equal(t, int64(0), stats.Served)
	assert.Equal(t, int64(2), stats.Degraded[CauseError])
}

func TestRetrievalService_StatsIsACopy(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	svc := NewRetrievalService(memory.NewDocumentStore(), retrievalSettings())
	svc.RetrieveContext(context.Background(), "missing", "user-1", "cat")

	stats := svc.Stats()
	stats.Degraded[CauseNotFound] = 99
	assert.Equal(t, int64(1), svc.Stats().Degraded[CauseNotFound])
}
