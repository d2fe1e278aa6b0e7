package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for document viewer resources.
	uriScheme = "documentviewer://"

	// pageSeparator separates pages in the text resource.
	pageSeparator = "\f"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all documents with their conversion state",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/text",
		Name:        "document-text",
		Description: "Extracted text of a converted document, pages separated by form feeds",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)
}

// handleDocumentsResource returns every document with its state.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		FileType string `json:"file_type"`
		State    string `json:"state"`
		TextURI  string `json:"text_uri"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		state := domain.StateNotConverted
		if st, err := s.ports.Documents.Status(ctx, docs[i].ID); err == nil {
			state = st.State
		}
		infos[i] = docInfo{
			ID:       docs[i].ID,
			Filename: docs[i].Filename,
			FileType: docs[i].FileType().String(),
			State:    string(state),
			TextURI:  uriScheme + "documents/" + docs[i].ID + "/text",
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentTextResource returns the extracted page text of a document.
func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract documentId from URI: documentviewer://documents/{documentId}/text
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	pages, err := s.ports.Documents.Text(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document text: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(pages, pageSeparator),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// documentviewer://documents/{documentId}/text.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/text"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
