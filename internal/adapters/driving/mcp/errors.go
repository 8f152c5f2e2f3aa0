// Package mcp provides an MCP (Model Context Protocol) server adapter for docchat.
// It lets local AI assistants pull grounded context out of a user's uploaded documents.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingOwner is returned when no user is set to scope document access.
var ErrMissingOwner = errors.New("mcp: owner id is required")
