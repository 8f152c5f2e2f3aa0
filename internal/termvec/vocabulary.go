package termvec

import (
	"sort"
	"strings"
)

// BuildVocabulary returns up to maxTerms distinct tokens from texts,
// most frequent first. Tokens with equal counts keep the order in which
// they were first seen. An empty token set yields an empty vocabulary.
func BuildVocabulary(texts []string, maxTerms int) []string {
	if maxTerms <= 0 {
		return []string{}
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokenize(strings.Join(texts, " ")) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxTerms {
		order = order[:maxTerms]
	}
	return order
}
