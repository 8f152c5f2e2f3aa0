// Package msword recovers text from legacy Word 97-2003 binary documents.
package msword

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the legacy Word content type.
const MIMEType = "application/msword"

// minRunLength is the shortest run of printable characters kept.
const minRunLength = 4

// oleMagic opens every OLE2 compound file.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var errNotCompoundFile = errors.New("not an OLE2 compound file")

// Normaliser handles .doc documents.
//
// The piece table is not parsed. Text is recovered by scanning the
// compound file for printable runs, which works for the common case of
// documents saved without fast-save.
type Normaliser struct{}

// New creates a new legacy Word normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".doc"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts text runs from the document. Word stores text as
// either UTF-16LE or 8-bit characters; the encoding yielding more text wins.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(raw.Content, oleMagic) {
		return nil, fmt.Errorf("%w: doc: %w", domain.ErrExtraction, errNotCompoundFile)
	}

	body := raw.Content[len(oleMagic):]
	wide := utf16Runs(body)
	narrow := asciiRuns(body)

	content := narrow
	if utf8.RuneCountInString(wide) >= utf8.RuneCountInString(narrow) {
		content = wide
	}

	return &driven.NormaliseResult{Content: content}, nil
}

// printable reports whether r belongs in recovered text.
func printable(r rune) bool {
	return r == '\t' || unicode.IsPrint(r)
}

// utf16Runs returns the little-endian UTF-16 runs of printable
// characters, one per line.
func utf16Runs(b []byte) string {
	var out []string
	for offset := 0; offset < 2; offset++ {
		var run []uint16
		flush := func() {
			if len(run) >= minRunLength {
				out = append(out, string(utf16.Decode(run)))
			}
			run = run[:0]
		}
		for i := offset; i+1 < len(b); i += 2 {
			u := uint16(b[i]) | uint16(b[i+1])<<8
			if u == '\r' || !printable(rune(u)) || utf16.IsSurrogate(rune(u)) {
				flush()
				continue
			}
			run = append(run, u)
		}
		flush()
		if len(out) > 0 {
			break
		}
	}
	return strings.Join(out, "\n")
}

// asciiRuns returns the runs of printable ASCII characters, one per line.
func asciiRuns(b []byte) string {
	var out []string
	start := -1
	for i := 0; i <= len(b); i++ {
		if i < len(b) && b[i] < utf8.RuneSelf && b[i] != '\r' && printable(rune(b[i])) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minRunLength {
			out = append(out, string(b[start:i]))
		}
		start = -1
	}
	return strings.Join(out, "\n")
}
