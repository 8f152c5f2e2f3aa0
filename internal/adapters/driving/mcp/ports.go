package mcp

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval selects document context for a question.
	Retrieval driving.RetrievalService

	// Document lists and reads the owner's documents. Optional.
	Document driving.DocumentService

	// OwnerID scopes every call. The MCP server acts for one local user.
	OwnerID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}
