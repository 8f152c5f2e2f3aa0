// Package ranker scores document chunks against query vectors and selects
// the chunks used as context.
package ranker

import (
	"sort"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/termvec"
)

// Policy controls which ranked chunks are selected.
type Policy struct {
	// TopK is the number of best-scoring chunks considered.
	TopK int

	// Threshold is the score a chunk must exceed to be kept.
	Threshold float64

	// FallbackCount is how many leading chunks are returned when nothing passes.
	FallbackCount int
}

// DefaultPolicy returns the selection policy for lexical vectors.
// The threshold is deliberately low since term vectors rarely score high.
func DefaultPolicy() Policy {
	return Policy{
		TopK:          domain.DefaultTopK,
		Threshold:     domain.DefaultThreshold,
		FallbackCount: domain.DefaultFallbackChunks,
	}
}

// PolicyFromSettings maps retrieval settings onto a Policy.
func PolicyFromSettings(s domain.RetrievalSettings) Policy {
	return Policy{
		TopK:          s.TopK,
		Threshold:     s.Threshold,
		FallbackCount: s.FallbackChunks,
	}
}

// Rank scores every chunk and returns them best first.
// A chunk's score is its highest cosine similarity against any of the
// query vectors. Equal scores keep document order.
func Rank(queries [][]float64, chunks []domain.Chunk) []domain.ScoredChunk {
	ranked := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		ranked[i] = domain.ScoredChunk{Chunk: c, Score: score(queries, c.Embedding)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func score(queries [][]float64, embedding []float64) float64 {
	best := 0.0
	for i, q := range queries {
		s := termvec.Cosine(q, embedding)
		if i == 0 || s > best {
			best = s
		}
	}
	return best
}

// Select applies the policy to ranked chunks. It keeps the TopK best
// scores that exceed the threshold. When none qualify it returns the first
// FallbackCount chunks in document order with fallback set, so a document
// always contributes some context.
func Select(ranked []domain.ScoredChunk, chunks []domain.Chunk, p Policy) (selected []domain.ScoredChunk, fallback bool) {
	top := ranked
	if p.TopK >= 0 && len(top) > p.TopK {
		top = top[:p.TopK]
	}

	for _, sc := range top {
		if sc.Score > p.Threshold {
			selected = append(selected, sc)
		}
	}
	if len(selected) > 0 {
		return selected, false
	}

	n := min(max(p.FallbackCount, 0), len(chunks))
	if n == 0 {
		return nil, false
	}
	scores := make(map[int]float64, len(ranked))
	for _, sc := range ranked {
		scores[sc.Chunk.Index] = sc.Score
	}
	for _, c := range chunks[:n] {
		selected = append(selected, domain.ScoredChunk{Chunk: c, Score: scores[c.Index]})
	}
	return selected, true
}
