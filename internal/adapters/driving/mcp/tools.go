package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id of the document to search"`
	Query      string `json:"query" jsonschema:"the question to find context for"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	Context  string        `json:"context"`
	Fallback bool          `json:"fallback"`
	Chunks   []ChunkOutput `json:"chunks"`
}

// ChunkOutput is one selected chunk.
type ChunkOutput struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises an uploaded document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	MIMEType   string `json:"mime_type"`
	Chunks     int    `json:"chunks"`
	UploadedAt string `json:"uploaded_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Find the passages of an uploaded document that best answer a question",
	}, s.handleRetrieve)

	if s.ports.Document != nil {
		mcp.AddTool(s.sdk, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the user's uploaded documents",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.DocumentID == "" {
		return nil, RetrieveOutput{}, errors.New("document_id is required")
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, errors.New("query is required")
	}

	result, err := s.ports.Retrieval.Retrieve(ctx, input.DocumentID, s.ports.OwnerID, input.Query)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context:  result.Context,
		Fallback: result.Fallback,
		Chunks:   make([]ChunkOutput, len(result.Selected)),
	}
	for i, sc := range result.Selected {
		output.Chunks[i] = ChunkOutput{
			Index: sc.Chunk.Index,
			Score: sc.Score,
			Text:  sc.Chunk.Text,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx, s.ports.OwnerID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			MIMEType:   docs[i].MIMEType,
			Chunks:     docs[i].ChunkCount,
			UploadedAt: docs[i].UploadedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return nil, output, nil
}
