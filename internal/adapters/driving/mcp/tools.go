package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultSearchLimit is the number of page hits returned when no limit is given.
const defaultSearchLimit = 10

// StatusInput is the input schema for the document_status tool.
type StatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document identifier"`
}

// StatusOutput is the output schema for the document_status tool.
type StatusOutput struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	State       string `json:"state"`
	Converted   bool   `json:"converted"`
	NumPages    int    `json:"num_pages"`
	ConvertedAt string `json:"converted_at,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	Indexed     bool   `json:"indexed"`
	Storage     string `json:"storage,omitempty"`
}

// SearchInput is the input schema for the search_document tool.
type SearchInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to search"`
	Query      string `json:"query" jsonschema:"words to look for in the page text"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of pages to return (default 10)"`
}

// SearchOutput is the output schema for the search_document tool.
type SearchOutput struct {
	Pages []PageHitOutput `json:"pages"`
	Count int             `json:"count"`
}

// PageHitOutput is one ranked page.
type PageHitOutput struct {
	Page  int     `json:"page"`
	Score float64 `json:"score"`
}

// ConvertInput is the input schema for the convert_document tool.
type ConvertInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to convert"`
	Force      bool   `json:"force,omitempty" jsonschema:"reconvert even if the artifacts are current"`
}

// ConvertOutput is the output schema for the convert_document tool.
type ConvertOutput struct {
	Queued bool `json:"queued"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Show the conversion status of a document",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_document",
		Description: "Rank the pages of a converted document against a query",
	}, s.handleSearch)

	if s.ports.Dispatcher != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "convert_document",
			Description: "Queue a document for conversion",
		}, s.handleConvert)
	}
}

// handleStatus handles the document_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	st, err := s.ports.Documents.Status(ctx, input.DocumentID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	output := StatusOutput{
		DocumentID: st.Document.ID,
		Filename:   st.Document.Filename,
		FileType:   st.Document.FileType().String(),
		State:      string(st.State),
		Indexed:    st.Indexed,
	}
	if st.Status != nil {
		output.Converted = st.Status.SuccessfullyConverted
		output.NumPages = st.Status.NumPages
		output.LastError = st.Status.LastError
		if !st.Status.ConvertedAt.IsZero() {
			output.ConvertedAt = st.Status.ConvertedAt.Format(time.RFC3339)
		}
	}
	if !st.Storage.IsZero() {
		output.Storage = fmt.Sprintf("%s:%s", st.Storage.Type, st.Storage.Path)
	}

	return nil, output, nil
}

// handleSearch handles the search_document tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ports.Documents.Search(ctx, input.DocumentID, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Pages: make([]PageHitOutput, len(hits)),
		Count: len(hits),
	}
	for i, hit := range hits {
		output.Pages[i] = PageHitOutput{Page: hit.Page, Score: hit.Score}
	}

	return nil, output, nil
}

// handleConvert handles the convert_document tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	if err := s.ports.Dispatcher.RequestConversion(ctx, input.DocumentID, input.Force); err != nil {
		return nil, ConvertOutput{}, err
	}
	return nil, ConvertOutput{Queued: true}, nil
}
