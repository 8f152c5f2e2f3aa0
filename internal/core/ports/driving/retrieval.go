package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// RetrievalService selects document context for a question.
type RetrievalService interface {
	// Retrieve scores the document's chunks against query and returns the
	// selection. Errors are returned to the caller.
	Retrieve(ctx context.Context, documentID, ownerID, query string) (*domain.RetrievalResult, error)

	// RetrieveContext returns the selected chunk text joined by blank lines.
	// It never fails: any error yields an empty string.
	RetrieveContext(ctx context.Context, documentID, ownerID, query string) string

	// Stats reports how often retrieval degraded, by cause.
	Stats() RetrievalStats
}

// RetrievalStats counts retrieval outcomes.
type RetrievalStats struct {
	// Served is the number of non-empty contexts returned.
	Served int64

	// Fallbacks is the number of contexts built from leading chunks.
	Fallbacks int64

	// Degraded counts empty contexts by cause ("not_found", "empty_document", "error").
	Degraded map[string]int64
}
