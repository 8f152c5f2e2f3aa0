package termvec

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token kept, in runes.
const MinTokenLength = 3

// extendedScript is the Arabic block, kept alongside ASCII word characters.
var extendedScript = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0600, Hi: 0x06FF, Stride: 1}},
}

// Tokenize lowercases text, drops every rune that is not an ASCII word
// character, whitespace or in the Arabic block, splits on whitespace and
// discards tokens shorter than MinTokenLength runes.
func Tokenize(text string) []string {
	cleaned := strings.Map(keepRune, strings.ToLower(text))

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func keepRune(r rune) rune {
	switch {
	case r == '_',
		r >= 'a' && r <= 'z',
		r >= 'A' && r <= 'Z',
		r >= '0' && r <= '9':
		return r
	case unicode.IsSpace(r):
		return ' '
	case unicode.Is(extendedScript, r):
		return r
	default:
		return -1
	}
}
