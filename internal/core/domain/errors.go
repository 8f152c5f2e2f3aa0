package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist
	// or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request carries no verified user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidSignature indicates a webhook payload failed verification.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Upload Errors.

	// ErrUnsupportedType indicates a MIME type no extractor accepts.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtraction indicates text extraction failed (corrupt file, wrong encoding).
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyContent indicates extraction produced no usable text.
	ErrEmptyContent = errors.New("no text content found in document")

	// ErrEmbeddingGeneration indicates tokenizing or vectorizing failed.
	ErrEmbeddingGeneration = errors.New("embedding generation failed")

	// ErrTooLarge indicates an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

// Kind groups errors by how a transport should report them.
type Kind int

const (
	// KindInternal is a server-side failure.
	KindInternal Kind = iota

	// KindClient is a rejected request.
	KindClient

	// KindNotFound is a missing entity.
	KindNotFound

	// KindAuth is a missing or invalid identity.
	KindAuth
)

// ErrorKind classifies err for reporting.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidSignature):
		return KindAuth
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrExtraction),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrTooLarge):
		return KindClient
	default:
		return KindInternal
	}
}
