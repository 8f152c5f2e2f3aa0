package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// checksumKey keys the content checksum. Checksums only deduplicate
// uploads, so the key is fixed.
var checksumKey = []byte("docchat/upload-checksum/v1.00000")

// DocumentService extracts, indexes and stores uploaded documents.
type DocumentService struct {
	docStore    driven.DocumentStore
	normalisers driven.NormaliserRegistry
	pipelines   driven.PipelineBuilder
	selectCfg   func(textLen int) domain.PipelineConfig
	maxBytes    int64
	now         func() time.Time
	newID       func() string
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithMaxUploadBytes rejects larger uploads with domain.ErrTooLarge.
// Zero disables the check.
func WithMaxUploadBytes(n int64) DocumentOption {
	return func(s *DocumentService) {
		s.maxBytes = n
	}
}

// WithPipelineSelector replaces the length-based chunking profile choice.
func WithPipelineSelector(fn func(textLen int) domain.PipelineConfig) DocumentOption {
	return func(s *DocumentService) {
		if fn != nil {
			s.selectCfg = fn
		}
	}
}

// WithDocumentClock sets the upload timestamp source.
func WithDocumentClock(now func() time.Time) DocumentOption {
	return func(s *DocumentService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	normalisers driven.NormaliserRegistry,
	pipelines driven.PipelineBuilder,
	opts ...DocumentOption,
) *DocumentService {
	s := &DocumentService{
		docStore:    docStore,
		normalisers: normalisers,
		pipelines:   pipelines,
		selectCfg:   domain.SelectPipelineConfig,
		maxBytes:    domain.DefaultMaxUploadBytes,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload extracts text from raw, chunks and embeds it, and stores the
// document with its chunks in a single write. Nothing is stored when any
// step fails or the text yields no chunks.
func (s *DocumentService) Upload(ctx context.Context, raw *domain.RawDocument) (*domain.UploadResult, error) {
	if raw == nil || raw.OwnerID == "" {
		return nil, fmt.Errorf("%w: upload requires an owner", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && raw.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrTooLarge, raw.Size(), s.maxBytes)
	}

	checksum, err := Checksum(raw.Content)
	if err != nil {
		return nil, err
	}
	existing, err := s.docStore.FindDocumentByChecksum(ctx, raw.OwnerID, checksum)
	switch {
	case err == nil:
		logger.Debug("upload %q matches document %s", raw.Filename, existing.ID)
		return &domain.UploadResult{Document: existing, Duplicate: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	start := time.Now()
	extracted, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(extracted.Content)
	if text == "" {
		return nil, domain.ErrEmptyContent
	}

	doc := &domain.Document{
		ID:         s.newID(),
		OwnerID:    raw.OwnerID,
		Filename:   raw.Filename,
		MIMEType:   raw.MIMEType,
		Size:       raw.Size(),
		Content:    extracted.Content,
		Checksum:   checksum,
		UploadedAt: s.now().UTC(),
		Active:     true,
	}

	cfg := s.selectCfg(utf8.RuneCountInString(doc.Content))
	pipeline, err := s.pipelines.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no passage long enough to index", domain.ErrEmptyContent)
	}
	doc.Chunks = chunks
	doc.ChunkCount = len(chunks)

	if err := s.docStore.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	logger.Info("indexed %q for %s: %d chunks, %d terms in %s",
		doc.Filename, doc.OwnerID, len(chunks), len(doc.Vocabulary), time.Since(start))
	return &domain.UploadResult{Document: doc}, nil
}

// List returns the user's active documents without content, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, ownerID)
}

// Get returns an active document with its chunks.
func (s *DocumentService) Get(ctx context.Context, id, ownerID string) (*domain.Document, error) {
	return s.docStore.FindDocument(ctx, id, ownerID)
}

// Delete deactivates a document.
func (s *DocumentService) Delete(ctx context.Context, id, ownerID string) error {
	return s.docStore.DeactivateDocument(ctx, id, ownerID)
}

// Checksum returns the hex HighwayHash-256 of data.
func Checksum(data []byte) (string, error) {
	h, err := highwayhash.New(checksumKey)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
