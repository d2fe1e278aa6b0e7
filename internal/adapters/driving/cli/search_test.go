package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [doc-id] [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "doc-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSearchCmd_HasFlags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "doc-1", "quarterly revenue")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] page 2 (1.25)")
	assert.Contains(t, out, "[2] page 1 (0.50)")
}

func TestSearchCmd_ExecutesWithLimitFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() {
		searchLimit = 10
	}()

	out, err := executeCommand("search", "-n", "1", "doc-1", "revenue")

	require.NoError(t, err)
	assert.Contains(t, out, "page 2")
	assert.NotContains(t, out, "[2]")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() {
		searchJSON = false
	}()

	out, err := executeCommand("search", "--json", "doc-1", "revenue")

	require.NoError(t, err)
	assert.Contains(t, out, `"page": 2`)
	assert.Contains(t, out, `"score": 1.25`)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldService := documentService
	documentService = nil
	defer func() {
		documentService = oldService
	}()

	_, err := executeCommand("search", "doc-1", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	documentService = &mockDocumentServiceError{}

	_, err := executeCommand("search", "doc-1", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchJSON_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchJSON(rootCmd, nil)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[]")
}

func TestOutputSearchTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchTable(rootCmd, []domain.PageHit{})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}
