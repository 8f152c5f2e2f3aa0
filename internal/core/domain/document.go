package domain

import "time"

// Document represents an uploaded file after extraction and indexing.
type Document struct {
	// ID is the unique identifier for this document.
	ID string

	// OwnerID is the user that uploaded the document.
	OwnerID string

	// Filename is the original name of the uploaded file.
	Filename string

	// MIMEType is the declared content type of the upload.
	MIMEType string

	// Size is the upload size in bytes.
	Size int64

	// Content is the full extracted text.
	// Empty in list projections.
	Content string

	// Checksum is a hex digest of the raw upload bytes.
	Checksum string

	// Vocabulary is the ordered term basis the chunk embeddings were built over.
	// Nil for documents indexed before vocabularies were persisted.
	Vocabulary []string

	// Chunks are the document's chunks in document order.
	// Nil in list projections.
	Chunks []Chunk

	// ChunkCount is the number of chunks, populated in list projections.
	ChunkCount int

	// UploadedAt is when the document was uploaded.
	UploadedAt time.Time

	// Active is false once the document has been deleted by its owner.
	Active bool
}

// Chunk is a contiguous slice of a document's text with its term vector.
// The field set mirrors the durable chunk record: text, index, start and
// end offsets and embedding.
type Chunk struct {
	// Text is the trimmed chunk content.
	Text string

	// Index is the 0-based position within the document.
	Index int

	// StartPos is the rune offset of the chunk window in the document text.
	StartPos int

	// EndPos is the exclusive rune offset of the chunk window.
	EndPos int

	// Embedding is the relative term frequency vector over the document vocabulary.
	Embedding []float64
}

// Len returns the window length in runes.
func (c Chunk) Len() int {
	return c.EndPos - c.StartPos
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult describes the outcome of retrieving context for a query.
type RetrievalResult struct {
	// DocumentID is the document that was searched.
	DocumentID string

	// Query is the raw query text.
	Query string

	// Vocabulary is the term basis used for scoring.
	Vocabulary []string

	// Selected are the chunks chosen as context, best first.
	Selected []ScoredChunk

	// Fallback is true when no chunk passed the threshold and the leading
	// chunks were used instead.
	Fallback bool

	// Context is the selected chunk text joined with blank lines.
	Context string
}

// UploadResult is returned after a document has been indexed.
type UploadResult struct {
	// Document is the stored document.
	Document *Document

	// Duplicate is true when an identical active upload already existed
	// and was returned instead of indexing again.
	Duplicate bool
}
