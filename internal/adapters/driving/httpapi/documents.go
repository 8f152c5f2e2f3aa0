package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// multipartOverhead allows for multipart framing around the file part.
const multipartOverhead = 64 << 10

type uploadData struct {
	DocumentID  string `json:"documentId"`
	Filename    string `json:"filename"`
	ChunksCount int    `json:"chunksCount"`
	TextLength  int    `json:"textLength"`
	Duplicate   bool   `json:"duplicate,omitempty"`
}

type uploadResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    uploadData `json:"data"`
}

type chunkJSON struct {
	Index    int     `json:"index"`
	Text     string  `json:"text"`
	StartPos int     `json:"startPos"`
	EndPos   int     `json:"endPos"`
	Score    float64 `json:"score,omitempty"`
}

type documentJSON struct {
	ID          string      `json:"id"`
	Filename    string      `json:"filename"`
	MIMEType    string      `json:"mimeType"`
	Size        int64       `json:"size"`
	ChunksCount int         `json:"chunksCount"`
	UploadedAt  time.Time   `json:"uploadedAt"`
	Content     string      `json:"content,omitempty"`
	Chunks      []chunkJSON `json:"chunks,omitempty"`
}

type contextRequest struct {
	Query string `json:"query"`
}

type contextResponse struct {
	Context  string      `json:"context"`
	Fallback bool        `json:"fallback"`
	Chunks   []chunkJSON `json:"chunks"`
}

func toDocumentJSON(doc *domain.Document, full bool) documentJSON {
	out := documentJSON{
		ID:          doc.ID,
		Filename:    doc.Filename,
		MIMEType:    doc.MIMEType,
		Size:        doc.Size,
		ChunksCount: doc.ChunkCount,
		UploadedAt:  doc.UploadedAt,
	}
	if !full {
		return out
	}
	out.Content = doc.Content
	out.Chunks = make([]chunkJSON, len(doc.Chunks))
	for i, c := range doc.Chunks {
		out.Chunks[i] = chunkJSON{Index: c.Index, Text: c.Text, StartPos: c.StartPos, EndPos: c.EndPos}
	}
	return out
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, fmt.Errorf("%w: limit is %d bytes", domain.ErrTooLarge, s.settings.MaxUploadBytes))
			return
		}
		writeError(w, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: read upload: %v", domain.ErrInvalidInput, err))
		return
	}

	result, err := s.ports.Documents.Upload(r.Context(), &domain.RawDocument{
		OwnerID:  userFrom(r.Context()),
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	doc := result.Document
	message := "Document processed successfully"
	if result.Duplicate {
		message = "Document already uploaded"
		// Duplicate lookups return the listing projection without text.
		if full, err := s.ports.Documents.Get(r.Context(), doc.ID, doc.OwnerID); err == nil {
			doc = full
		}
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		Message: message,
		Data: uploadData{
			DocumentID:  doc.ID,
			Filename:    doc.Filename,
			ChunksCount: doc.ChunkCount,
			TextLength:  utf8.RuneCountInString(doc.Content),
			Duplicate:   result.Duplicate,
		},
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Documents.List(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentJSON(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ports.Documents.Get(r.Context(), r.PathValue("id"), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentJSON(doc, true))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Documents.Delete(r.Context(), r.PathValue("id"), userFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return
	}

	result, err := s.ports.Retrieval.Retrieve(r.Context(), r.PathValue("id"), userFrom(r.Context()), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	out := contextResponse{
		Context:  result.Context,
		Fallback: result.Fallback,
		Chunks:   make([]chunkJSON, len(result.Selected)),
	}
	for i, sc := range result.Selected {
		out.Chunks[i] = chunkJSON{
			Index:    sc.Chunk.Index,
			Text:     sc.Chunk.Text,
			StartPos: sc.Chunk.StartPos,
			EndPos:   sc.Chunk.EndPos,
			Score:    sc.Score,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
