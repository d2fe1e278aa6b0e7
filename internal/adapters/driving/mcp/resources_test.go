package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid text URI",
			uri:      "documentviewer://documents/doc-456/text",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456/text",
			expected: "",
		},
		{
			name:     "missing text suffix",
			uri:      "documentviewer://documents/doc-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "documentviewer://documents/a/b/text",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents with state", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{
				{ID: "doc-1", Filename: "report.pdf"},
				{ID: "doc-2", Filename: "slides.pptx"},
			},
			status: &driving.DocumentStatus{State: domain.StateConverted},
		}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("documentviewer://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, "doc-1")
		assert.Contains(t, text, "report.pdf")
		assert.Contains(t, text, `"file_type": "ppt"`)
		assert.Contains(t, text, `"state": "converted"`)
		assert.Contains(t, text, "documentviewer://documents/doc-2/text")
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("status error reports not converted", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{{ID: "doc-1", Filename: "report.pdf"}},
			statusErr: errors.New("metadata unavailable"),
		}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("documentviewer://documents"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"state": "not_converted"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: errors.New("storage error")}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("documentviewer://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})

	t.Run("handles empty document list", func(t *testing.T) {
		mockDocs := &mockDocumentService{documents: []domain.Document{}}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("documentviewer://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Documents: &mockDocumentService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("documentviewer://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Documents: &mockDocumentService{err: domain.ErrNotFound}})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("documentviewer://documents/nope/text"))

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "getting document text")
	})

	t.Run("joins pages with form feeds", func(t *testing.T) {
		mockDocs := &mockDocumentService{text: []string{"first page", "second page"}}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		result, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("documentviewer://documents/doc-1/text"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "first page\fsecond page", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("returns error on text failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: errors.New("artifact store offline")}

		server, err := NewServer(&Ports{Documents: mockDocs})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("documentviewer://documents/doc-1/text"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting document text")
	})
}
