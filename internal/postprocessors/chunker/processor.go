// Package chunker provides a sentence-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 300

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultMaxChunks is the default cap on chunks per document.
const DefaultMaxChunks = 20

// DefaultMinLength is the shortest trimmed chunk kept.
const DefaultMinLength = 10

const (
	// sentenceSearchMin is the window length above which a sentence cut is attempted.
	sentenceSearchMin = 100

	// sentenceCutRatio is how far into the window a sentence end must lie to be used.
	sentenceCutRatio = 0.7
)

// Processor splits document content into overlapping chunks that prefer
// to end on a sentence boundary. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	maxChunks int
	minLength int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMaxChunks caps the number of chunks produced.
func WithMaxChunks(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChunks = n
		}
	}
}

// WithMinLength sets the shortest trimmed chunk kept.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
		minLength: DefaultMinLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// FromConfig creates a chunker for a pipeline configuration.
func FromConfig(cfg domain.PipelineConfig) *Processor {
	return New(
		WithChunkSize(cfg.ChunkSize),
		WithOverlap(cfg.Overlap),
		WithMaxChunks(cfg.MaxChunks),
		WithMinLength(cfg.MinChunkLength),
	)
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}
	return p.Split(doc.Content), nil
}

// Split cuts text into chunks. Offsets are rune offsets into text.
//
// Each window starts where the previous one ended minus the overlap. A
// window that ends inside the text and is longer than 100 runes is cut
// after its last '.', '?' or '!' when that lies past 70% of the window.
// Chunking stops at the end of the text or once maxChunks chunks exist.
func (p *Processor) Split(text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)

	estimated := min(p.maxChunks, n/(p.chunkSize-p.overlap)+1)
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < n && len(chunks) < p.maxChunks {
		end := min(start+p.chunkSize, n)
		window := runes[start:end]

		if end < n && len(window) > sentenceSearchMin {
			if cut := lastSentenceEnd(window); float64(cut) > float64(len(window))*sentenceCutRatio {
				window = window[:cut+1]
			}
		}

		trimmed := strings.TrimSpace(string(window))
		if utf8.RuneCountInString(trimmed) >= p.minLength {
			chunks = append(chunks, domain.Chunk{
				Text:     trimmed,
				Index:    len(chunks),
				StartPos: start,
				EndPos:   start + len(window),
			})
		}

		if end == n {
			break
		}
		start = max(start+1, start+len(window)-p.overlap)
	}

	// A document shorter than the minimum still yields one chunk.
	if len(chunks) == 0 && n <= p.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			chunks = append(chunks, domain.Chunk{Text: trimmed, EndPos: n})
		}
	}

	return chunks
}

// lastSentenceEnd returns the index of the last sentence terminator in
// window, or -1.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '?', '!':
			return i
		}
	}
	return -1
}
