package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectPipelineConfig tests size-based profile selection
func TestSelectPipelineConfig(t *testing.T) {
	tests := []struct {
		name      string
		textLen   int
		chunkSize int
		maxChunks int
	}{
		{"small", 1_000, 300, 20},
		{"at large threshold", 50_000, 300, 20},
		{"large", 60_000, 1000, 30},
		{"at huge threshold", 100_000, 1000, 30},
		{"huge", 150_000, 2000, 75},
		{"huge capped", 1_000_000, 2000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SelectPipelineConfig(tt.textLen)
			assert.Equal(t, tt.chunkSize, cfg.ChunkSize)
			assert.Equal(t, tt.maxChunks, cfg.MaxChunks)
			assert.Equal(t, 50, cfg.Overlap)
			assert.Equal(t, SampleAll, cfg.VocabularySample)
			require.NoError(t, cfg.Validate())
		})
	}
}

// TestLowResourcePipelineConfig tests the sampled vocabulary profile
func TestLowResourcePipelineConfig(t *testing.T) {
	cfg := LowResourcePipelineConfig()
	assert.Equal(t, SampleHead, cfg.VocabularySample)
	assert.Equal(t, 3, cfg.SampleChunks)
	assert.Equal(t, 50, cfg.VocabularySize)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.Overlap)
	assert.NoError(t, cfg.Validate())
}

func TestPipelineProfile_Selector(t *testing.T) {
	for _, textLen := range []int{10, 60_000, 200_000} {
		assert.Equal(t, LowResourcePipelineConfig(), ProfileLowResource.Selector()(textLen))
		assert.Equal(t, SelectPipelineConfig(textLen), ProfileStandard.Selector()(textLen))
		assert.Equal(t, SelectPipelineConfig(textLen), PipelineProfile("").Selector()(textLen))
	}

	assert.True(t, ProfileStandard.IsValid())
	assert.True(t, ProfileLowResource.IsValid())
	assert.False(t, PipelineProfile("tiny").IsValid())
}

// TestPipelineConfig_Validate tests rejection of unusable parameters
func TestPipelineConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"zero chunk size", func(c *PipelineConfig) { c.ChunkSize = 0 }},
		{"overlap equal to size", func(c *PipelineConfig) { c.Overlap = c.ChunkSize }},
		{"negative overlap", func(c *PipelineConfig) { c.Overlap = -1 }},
		{"zero cap", func(c *PipelineConfig) { c.MaxChunks = 0 }},
		{"negative vocabulary", func(c *PipelineConfig) { c.VocabularySize = -1 }},
		{"head without count", func(c *PipelineConfig) {
			c.VocabularySample = SampleHead
			c.SampleChunks = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
