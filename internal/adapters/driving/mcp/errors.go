// Package mcp provides an MCP (Model Context Protocol) server adapter for docent.
// It exposes the conversational assistant, hybrid search and the
// code-suggestion workflow to MCP-compatible AI assistants and editors.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
