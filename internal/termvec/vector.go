package termvec

import "math"

// Embed returns the relative frequency of each vocabulary term in text.
// The vector has len(vocabulary) components; empty text yields zeros.
func Embed(text string, vocabulary []string) []float64 {
	vec := make([]float64, len(vocabulary))
	if len(vocabulary) == 0 {
		return vec
	}

	tokens := Tokenize(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	total := float64(max(1, len(tokens)))
	for i, term := range vocabulary {
		vec[i] = float64(counts[term]) / total
	}
	return vec
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A shorter vector is treated as zero-padded to the longer length.
// The result is 0 when either vector has zero norm.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))

	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}

	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (normA * normB)
	return math.Max(-1, math.Min(1, sim))
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
