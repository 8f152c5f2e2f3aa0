package msword

import (
	"context"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func utf16le(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u), byte(u>>8))
	}
	return b
}

func compoundFile(parts ...[]byte) []byte {
	b := append([]byte{}, oleMagic...)
	b = append(b, 0x00, 0x00, 0x00, 0x00)
	for _, p := range parts {
		b = append(b, p...)
		b = append(b, 0x00, 0x00, 0x00, 0x00)
	}
	return b
}

func normalise(t *testing.T, content []byte) string {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Filename: "legacy.doc",
		MIMEType: MIMEType,
		Content:  content,
	})
	require.NoError(t, err)
	return result.Content
}

func TestSupportedTypes(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/msword"}, n.SupportedMIMETypes())
	assert.Equal(t, []string{".doc"}, n.SupportedExtensions())
}

func TestNormalise_UTF16Text(t *testing.T) {
	content := normalise(t, compoundFile(utf16le("Quarterly report for the board")))
	assert.Equal(t, "Quarterly report for the board", content)
}

func TestNormalise_ArabicUTF16Text(t *testing.T) {
	content := normalise(t, compoundFile(utf16le("تقرير الربع الأول")))
	assert.Equal(t, "تقرير الربع الأول", content)
}

func TestNormalise_EightBitText(t *testing.T) {
	content := normalise(t, compoundFile([]byte("Minutes of the weekly meeting")))
	assert.Equal(t, "Minutes of the weekly meeting", content)
}

func TestNormalise_DropsShortRuns(t *testing.T) {
	content := normalise(t, compoundFile([]byte("ab"), []byte("kept text")))
	assert.Equal(t, "kept text", content)
}

func TestNormalise_NotCompoundFile(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		MIMEType: MIMEType,
		Content:  []byte("plain bytes pretending to be a doc"),
	})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
