package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
		if cfg.ChunkSize != 123 {
			t.Errorf("expected config to reach builder, got %+v", cfg)
		}
		return &registryMockProcessor{name: "test"}, nil
	})

	proc, err := r.Build("test", domain.PipelineConfig{ChunkSize: 123})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "test" {
		t.Errorf("expected name 'test', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", domain.DefaultPipelineConfig())
	if err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()

	if names := r.Names(); len(names) != 0 {
		t.Errorf("expected 0 names, got %d", len(names))
	}

	RegisterDefaults(r)

	nameSet := make(map[string]bool)
	for _, n := range r.Names() {
		nameSet[n] = true
	}
	if !nameSet["chunker"] || !nameSet["embedder"] {
		t.Errorf("expected chunker and embedder, got %v", r.Names())
	}
}

func TestBuilder_Build_InvalidConfig(t *testing.T) {
	cfg := domain.DefaultPipelineConfig()
	cfg.Overlap = cfg.ChunkSize

	_, err := NewDefaultBuilder().Build(cfg)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestBuilder_Build_UnknownName(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := NewBuilder(r, "chunker", "stemmer").Build(domain.DefaultPipelineConfig())
	if err == nil {
		t.Error("expected error for unregistered processor")
	}
}

func TestBuilder_Build_Order(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b"} {
		r.Register(name, func(_ domain.PipelineConfig) (driven.PostProcessor, error) {
			return &registryMockProcessor{name: name}, nil
		})
	}

	pipeline, err := NewBuilder(r, "b", "a").Build(domain.DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	p, ok := pipeline.(*Pipeline)
	if !ok {
		t.Fatalf("expected *Pipeline, got %T", pipeline)
	}
	if got := p.Stages(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Stages() = %v, want [b a]", got)
	}
}
