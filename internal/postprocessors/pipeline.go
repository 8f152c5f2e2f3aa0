// Package postprocessors turns extracted text into indexed chunks.
//
// A Pipeline runs processors in order: the chunker creates chunks from the
// document content and the embedder attaches term vectors to them. A
// Builder assembles a fresh pipeline for each upload from a
// domain.PipelineConfig, so large documents get coarser chunking without a
// separate code path.
package postprocessors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline is a fixed sequence of stages. Each stage receives the chunks
// produced by the one before it; the first receives nil.
type Pipeline struct {
	stages []driven.PostProcessor
}

func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Process runs every stage over doc. It stops before the next stage once
// ctx is done.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("process: nil document")
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before %s: %w", stage.Name(), err)
		}

		began := time.Now()
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		logger.Debug("pipeline %s: %s produced %d chunks (%s)", doc.ID, stage.Name(), len(out), time.Since(began))
		chunks = out
	}
	return chunks, nil
}
