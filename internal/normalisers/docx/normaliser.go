// Package docx extracts text from Office Open XML word processing documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the DOCX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts the body text of a DOCX document.
// Paragraphs and table rows become lines; table cells are tab separated.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %w", domain.ErrExtraction, err)
	}

	content, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %w", domain.ErrExtraction, err)
	}

	return &driven.NormaliseResult{Content: content}, nil
}

var errNoDocumentPart = errors.New("word/document.xml not found")

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if !strings.EqualFold(file.Name, "word/document.xml") {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		return parseDocumentXML(rc)
	}
	return "", errNoDocumentPart
}

// parseDocumentXML walks the document tokens and collects run text.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	lineStart := true
	inProps := 0 // paragraph properties declare tab stops, not tabs

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				inProps++
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", err
				}
				b.WriteString(text)
				lineStart = false
			case "tab":
				if inProps == 0 {
					b.WriteByte('\t')
					lineStart = false
				}
			case "br", "cr":
				b.WriteByte('\n')
				lineStart = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "pPr":
				inProps--
			case "p", "tr":
				if !lineStart {
					b.WriteByte('\n')
					lineStart = true
				}
			case "tc":
				if !lineStart {
					b.WriteByte('\t')
				}
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
