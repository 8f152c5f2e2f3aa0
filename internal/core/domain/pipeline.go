package domain

import "fmt"

// SampleStrategy selects which chunks feed the vocabulary builder.
type SampleStrategy string

const (
	// SampleAll counts terms across every chunk.
	SampleAll SampleStrategy = "all"

	// SampleHead counts terms across the first SampleChunks chunks only.
	// A cheaper approximation for constrained deployments.
	SampleHead SampleStrategy = "head"
)

// Input length thresholds (in runes) at which chunking becomes coarser.
const (
	LargeDocumentThreshold = 50_000
	HugeDocumentThreshold  = 100_000
)

// PipelineConfig parameterises chunking and embedding for one upload.
type PipelineConfig struct {
	// ChunkSize is the target window length in runes.
	ChunkSize int

	// Overlap is how many runes consecutive windows share. Must be below ChunkSize.
	Overlap int

	// MaxChunks caps the number of chunks produced.
	MaxChunks int

	// MinChunkLength is the shortest trimmed chunk kept.
	MinChunkLength int

	// VocabularySize is the number of terms in the embedding basis.
	VocabularySize int

	// VocabularySample selects the chunks counted for the vocabulary.
	VocabularySample SampleStrategy

	// SampleChunks is the number of leading chunks for SampleHead.
	SampleChunks int
}

// Validate reports whether the configuration can drive the chunker.
func (c PipelineConfig) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	case c.Overlap < 0 || c.Overlap >= c.ChunkSize:
		return fmt.Errorf("%w: overlap must be in [0, %d)", ErrInvalidInput, c.ChunkSize)
	case c.MaxChunks <= 0:
		return fmt.Errorf("%w: chunk cap must be positive", ErrInvalidInput)
	case c.VocabularySize < 0:
		return fmt.Errorf("%w: vocabulary size must not be negative", ErrInvalidInput)
	case c.VocabularySample == SampleHead && c.SampleChunks <= 0:
		return fmt.Errorf("%w: head sampling needs a chunk count", ErrInvalidInput)
	}
	return nil
}

// DefaultPipelineConfig returns the configuration for ordinary documents.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:        300,
		Overlap:          50,
		MaxChunks:        20,
		MinChunkLength:   10,
		VocabularySize:   DefaultVocabularySize,
		VocabularySample: SampleAll,
	}
}

// LowResourcePipelineConfig uses wide windows and samples the vocabulary
// from the first few chunks.
func LowResourcePipelineConfig() PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.ChunkSize = 1000
	cfg.Overlap = 100
	cfg.MaxChunks = 100
	cfg.VocabularySize = 50
	cfg.VocabularySample = SampleHead
	cfg.SampleChunks = 3
	return cfg
}

// SelectPipelineConfig scales chunk size and cap with the input length so
// large documents stay within bounded memory and processing time.
func SelectPipelineConfig(textLen int) PipelineConfig {
	cfg := DefaultPipelineConfig()
	switch {
	case textLen > HugeDocumentThreshold:
		cfg.ChunkSize = 2000
		cfg.MaxChunks = min(100, textLen/2000)
	case textLen > LargeDocumentThreshold:
		cfg.ChunkSize = 1000
		cfg.MaxChunks = 30
	}
	return cfg
}

// PipelineProfile names a way of choosing the PipelineConfig for an upload.
type PipelineProfile string

const (
	// ProfileStandard scales chunking with the input length.
	ProfileStandard PipelineProfile = "standard"

	// ProfileLowResource always uses LowResourcePipelineConfig.
	ProfileLowResource PipelineProfile = "low_resource"
)

// IsValid returns true if the profile is recognised.
func (p PipelineProfile) IsValid() bool {
	return p == ProfileStandard || p == ProfileLowResource
}

// Selector returns the function that picks a PipelineConfig from the input
// length. Unknown profiles behave like ProfileStandard.
func (p PipelineProfile) Selector() func(textLen int) PipelineConfig {
	if p == ProfileLowResource {
		return func(int) PipelineConfig { return LowResourcePipelineConfig() }
	}
	return SelectPipelineConfig
}
