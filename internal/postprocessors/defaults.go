package postprocessors

import (
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/postprocessors/chunker"
	"github.com/custodia-labs/docchat/internal/postprocessors/embedder"
)

// DefaultProcessors is the indexing order used for uploads.
var DefaultProcessors = []string{"chunker", "embedder"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("embedder", buildEmbedder)
}

// NewDefaultBuilder returns a builder for the standard chunk-then-embed pipeline.
func NewDefaultBuilder() *Builder {
	r := NewRegistry()
	RegisterDefaults(r)
	return NewBuilder(r, DefaultProcessors...)
}

func buildChunker(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
	return chunker.FromConfig(cfg), nil
}

func buildEmbedder(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
	return embedder.FromConfig(cfg), nil
}
