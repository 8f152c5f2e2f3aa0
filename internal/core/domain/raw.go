package domain

// RawDocument represents an upload before text extraction.
type RawDocument struct {
	// OwnerID is the user performing the upload.
	OwnerID string

	// Filename is the client-supplied file name.
	Filename string

	// MIMEType is the declared content type (e.g., "text/plain").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Size returns the number of content bytes.
func (r *RawDocument) Size() int64 {
	return int64(len(r.Content))
}
