package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DocumentService manages a user's uploaded documents.
type DocumentService interface {
	// Upload extracts, chunks, embeds and stores a document.
	// Errors wrap domain.ErrUnsupportedType, domain.ErrExtraction,
	// domain.ErrEmptyContent or domain.ErrEmbeddingGeneration.
	Upload(ctx context.Context, raw *domain.RawDocument) (*domain.UploadResult, error)

	// List returns the user's active documents without content, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Get returns an active document with its chunks.
	Get(ctx context.Context, id, ownerID string) (*domain.Document, error)

	// Delete deactivates a document so it no longer appears in listings or retrieval.
	Delete(ctx context.Context, id, ownerID string) error
}
