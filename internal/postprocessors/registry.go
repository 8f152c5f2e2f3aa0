package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.PipelineBuilder = (*Builder)(nil)

// BuilderFunc creates a PostProcessor for one pipeline configuration.
type BuilderFunc func(cfg domain.PipelineConfig) (driven.PostProcessor, error)

// Registry maps processor names to their builders.
// It allows dynamic construction of processors from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new processor registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a processor builder to the registry.
// Name should be unique and match the processor's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a processor by name with the given config.
// Returns error if the processor name is not registered.
func (r *Registry) Build(name string, cfg domain.PipelineConfig) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s", name)
	}
	return builder(cfg)
}

// Has returns true if a processor with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered processor names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// Builder assembles pipelines from an ordered list of registered processors.
type Builder struct {
	registry *Registry
	names    []string
}

// NewBuilder creates a builder running the named processors in order.
func NewBuilder(registry *Registry, names ...string) *Builder {
	return &Builder{registry: registry, names: names}
}

// Build validates cfg and returns a pipeline parameterised by it.
func (b *Builder) Build(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stages := make([]driven.PostProcessor, 0, len(b.names))
	for _, name := range b.names {
		proc, err := b.registry.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		stages = append(stages, proc)
	}
	return NewPipeline(stages...), nil
}
