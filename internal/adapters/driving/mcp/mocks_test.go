package mcp

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error

	gotDocumentID string
	gotOwnerID    string
	gotQuery      string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, documentID, ownerID, query string) (*domain.RetrievalResult, error) {
	m.gotDocumentID = documentID
	m.gotOwnerID = ownerID
	m.gotQuery = query
	return m.result, m.err
}

func (m *mockRetrievalService) RetrieveContext(context.Context, string, string, string) string {
	if m.result == nil {
		return ""
	}
	return m.result.Context
}

func (m *mockRetrievalService) Stats() driving.RetrievalStats {
	return driving.RetrievalStats{}
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error

	gotOwnerID string
}

func (m *mockDocumentService) Upload(context.Context, *domain.RawDocument) (*domain.UploadResult, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context, ownerID string) ([]domain.Document, error) {
	m.gotOwnerID = ownerID
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _, ownerID string) (*domain.Document, error) {
	m.gotOwnerID = ownerID
	return m.document, m.err
}

func (m *mockDocumentService) Delete(context.Context, string, string) error {
	return m.err
}
