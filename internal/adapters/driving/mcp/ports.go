package mcp

import (
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the MCP server.
type Ports struct {
	// Documents serves documents, their status and page text.
	Documents driving.DocumentService

	// Dispatcher queues conversions. Optional; without it the
	// convert_document tool is not registered.
	Dispatcher driving.Dispatcher
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
