// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// document viewer. It lets AI assistants inspect conversion status and search
// the extracted page text of converted documents.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
