package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

const (
	documentsURI = "docchat://documents"

	partText   = ""
	partChunks = "chunks"
)

// chunkOutput is one entry of the chunks resource.
type chunkOutput struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// registerResources exposes documents when a document service is present:
//
//	docchat://documents              JSON list
//	docchat://documents/{id}         extracted text
//	docchat://documents/{id}/chunks  JSON chunks with offsets
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.sdk.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "The user's uploaded documents",
		MIMEType:    "application/json",
	}, s.readDocumentList)

	s.sdk.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of an uploaded document",
		MIMEType:    "text/plain",
	}, s.readDocument)

	s.sdk.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}/chunks",
		Name:        "document-chunks",
		Description: "The indexed chunks of an uploaded document with their character offsets",
		MIMEType:    "application/json",
	}, s.readDocument)
}

func (s *Server) readDocumentList(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	_, list, err := s.handleListDocuments(ctx, nil, ListDocumentsInput{})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return jsonResource(req.Params.URI, list.Documents)
}

// readDocument serves both the text and the chunks of one document.
func (s *Server) readDocument(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, part, ok := parseDocumentURI(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	doc, err := s.ports.Document.Get(ctx, id, s.ports.OwnerID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}

	if part == partChunks {
		chunks := make([]chunkOutput, len(doc.Chunks))
		for i, c := range doc.Chunks {
			chunks[i] = chunkOutput{Index: c.Index, Start: c.StartPos, End: c.EndPos, Text: c.Text}
		}
		return jsonResource(uri, chunks)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/plain", Text: doc.Content}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(data)}},
	}, nil
}

// parseDocumentURI splits docchat://documents/{id}[/chunks].
func parseDocumentURI(uri string) (id, part string, ok bool) {
	rest, found := strings.CutPrefix(uri, documentsURI+"/")
	if !found {
		return "", "", false
	}

	id, part, _ = strings.Cut(rest, "/")
	if id == "" || (part != partText && part != partChunks) {
		return "", "", false
	}
	return id, part, true
}
