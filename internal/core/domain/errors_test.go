package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrInvalidSignature", ErrInvalidSignature},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmptyContent", ErrEmptyContent},
		{"ErrEmbeddingGeneration", ErrEmbeddingGeneration},
		{"ErrTooLarge", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrorKind tests classification of wrapped errors
func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unsupported type", fmt.Errorf("%w: image/png", ErrUnsupportedType), KindClient},
		{"extraction", fmt.Errorf("docx: %w", ErrExtraction), KindClient},
		{"empty content", ErrEmptyContent, KindClient},
		{"invalid input", ErrInvalidInput, KindClient},
		{"too large", ErrTooLarge, KindClient},
		{"not found", fmt.Errorf("document abc: %w", ErrNotFound), KindNotFound},
		{"unauthorized", ErrUnauthorized, KindAuth},
		{"bad signature", ErrInvalidSignature, KindAuth},
		{"embedding generation", ErrEmbeddingGeneration, KindInternal},
		{"unknown", errors.New("disk on fire"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}
