package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// CreateDocument stores a document with its chunks.
func (s *DocumentStore) CreateDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.OwnerID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneDocument(*doc)
	stored.Active = true
	stored.ChunkCount = len(stored.Chunks)
	s.documents[doc.ID] = stored
	return nil
}

// FindDocument returns an active document with its chunks.
func (s *DocumentStore) FindDocument(_ context.Context, id, ownerID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok || !doc.Active || doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	found := cloneDocument(doc)
	return &found, nil
}

// FindDocumentByChecksum returns the owner's newest active document with the checksum.
func (s *DocumentStore) FindDocumentByChecksum(_ context.Context, ownerID, checksum string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.sorted(ownerID) {
		if doc.Checksum == checksum {
			found := projection(doc)
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns the owner's active documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context, ownerID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.sorted(ownerID)
	result := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		result = append(result, projection(doc))
	}
	return result, nil
}

// DeactivateDocument soft-deletes a document.
func (s *DocumentStore) DeactivateDocument(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok || !doc.Active || doc.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	doc.Active = false
	s.documents[id] = doc
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

// sorted returns the owner's active documents, newest first. Caller holds the lock.
func (s *DocumentStore) sorted(ownerID string) []domain.Document {
	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Active && doc.OwnerID == ownerID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs
}

// projection drops content and chunks, as list queries do.
func projection(doc domain.Document) domain.Document {
	doc.Content = ""
	doc.Chunks = nil
	doc.Vocabulary = append([]string(nil), doc.Vocabulary...)
	return doc
}

// cloneDocument copies the slices so callers cannot mutate stored state.
func cloneDocument(doc domain.Document) domain.Document {
	if doc.Vocabulary != nil {
		doc.Vocabulary = append([]string(nil), doc.Vocabulary...)
	}
	if doc.Chunks != nil {
		chunks := make([]domain.Chunk, len(doc.Chunks))
		for i, c := range doc.Chunks {
			c.Embedding = append([]float64(nil), c.Embedding...)
			chunks[i] = c
		}
		doc.Chunks = chunks
	}
	return doc
}
