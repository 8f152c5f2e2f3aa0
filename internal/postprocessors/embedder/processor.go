// Package embedder provides the processor that attaches term vectors to chunks.
package embedder

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/termvec"
)

// Processor builds a document vocabulary from its chunks and fills every
// chunk's embedding over it. The vocabulary is stored on the document so
// queries can be embedded over the same basis later.
type Processor struct {
	vocabularySize int
	sample         domain.SampleStrategy
	sampleChunks   int
	workers        int
}

// Option configures the embedder processor.
type Option func(*Processor)

// WithVocabularySize sets the number of vocabulary terms.
func WithVocabularySize(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.vocabularySize = n
		}
	}
}

// WithHeadSample counts vocabulary terms over the first n chunks only.
func WithHeadSample(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.sample = domain.SampleHead
			p.sampleChunks = n
		}
	}
}

// WithWorkers bounds how many chunks are embedded concurrently.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a new embedder processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		vocabularySize: domain.DefaultVocabularySize,
		sample:         domain.SampleAll,
		workers:        runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromConfig creates an embedder for a pipeline configuration.
func FromConfig(cfg domain.PipelineConfig) *Processor {
	opts := []Option{WithVocabularySize(cfg.VocabularySize)}
	if cfg.VocabularySample == domain.SampleHead {
		opts = append(opts, WithHeadSample(cfg.SampleChunks))
	}
	return New(opts...)
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "embedder"
}

// Process sets doc.Vocabulary and returns chunks with embeddings.
// Failures are reported as domain.ErrEmbeddingGeneration.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (out []domain.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingGeneration, r)
		}
	}()

	vocab := termvec.BuildVocabulary(p.sampleTexts(chunks), p.vocabularySize)

	out = make([]domain.Chunk, len(chunks))
	copy(out, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range out {
		g.Go(func() (gerr error) {
			defer func() {
				if r := recover(); r != nil {
					gerr = fmt.Errorf("chunk %d: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i].Embedding = termvec.Embed(out[i].Text, vocab)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingGeneration, err)
	}

	doc.Vocabulary = vocab
	return out, nil
}

// sampleTexts returns the chunk texts counted for the vocabulary.
func (p *Processor) sampleTexts(chunks []domain.Chunk) []string {
	sample := chunks
	if p.sample == domain.SampleHead && len(sample) > p.sampleChunks {
		sample = sample[:p.sampleChunks]
	}
	texts := make([]string, len(sample))
	for i, c := range sample {
		texts[i] = c.Text
	}
	return texts
}
