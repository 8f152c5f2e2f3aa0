package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// NormaliserRegistry routes an upload to a Normaliser by MIME type, then by
// file extension. Among candidates the highest Priority wins.
type NormaliserRegistry interface {
	// Normalise fails with domain.ErrUnsupportedType when nothing matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(normaliser Normaliser)
	SupportedMIMETypes() []string
}
