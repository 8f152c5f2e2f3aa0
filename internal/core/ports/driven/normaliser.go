package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Normaliser extracts plain text from one family of file formats.
type Normaliser interface {
	SupportedMIMETypes() []string

	// SupportedExtensions (with leading dot) are consulted when the
	// declared MIME type is missing or generic.
	SupportedExtensions() []string

	// Priority breaks ties between matching normalisers; higher wins.
	// Format parsers use 50-89 and catch-alls 1-9.
	Priority() int

	// Normalise fails with an error wrapping domain.ErrExtraction when the
	// file cannot be parsed.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult is the extracted text, ready for chunking.
type NormaliseResult struct {
	Content string
}
