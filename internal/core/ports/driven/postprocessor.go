package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// PostProcessor turns extracted document content into indexed chunks.
// PostProcessors are chained in a pipeline (chunking, then embedding).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	// If the processor enriches chunks (e.g., embedder), it receives and returns chunks
	// and may record document-level results such as the vocabulary on doc.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// PipelineBuilder assembles a pipeline for one upload's configuration.
type PipelineBuilder interface {
	// Build returns a pipeline parameterised by cfg.
	Build(cfg domain.PipelineConfig) (PostProcessorPipeline, error)
}
