package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range settingsCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "local-indexation"}, names)
}

func TestSettingsShow_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	for _, args := range [][]string{{"settings"}, {"settings", "show"}} {
		out, err := executeCommand(args...)

		require.NoError(t, err)
		assert.Contains(t, out, "Current Settings")
		assert.Contains(t, out, "[Storage]")
		assert.Contains(t, out, "Auto select: on")
		assert.Contains(t, out, "File types: pdf, word, ppt")
		assert.Contains(t, out, "Image format: png")
		assert.Contains(t, out, "Timeout: 5m0s")
		assert.Contains(t, out, "Configuration is valid.")
	}
}

func TestSettingsShow_InvalidConfiguration(t *testing.T) {
	cleanup, svc := installTestServices()
	defer cleanup()
	svc.settings.global.StorageType = domain.StorageFile

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "storage location")
}

func TestSettingsSet_Executes(t *testing.T) {
	cleanup, svc := installTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "set", "conversion.image_format", "jpeg")

	require.NoError(t, err)
	assert.Contains(t, out, "conversion.image_format set to jpeg")
	assert.Equal(t, "jpeg", svc.settings.values["conversion.image_format"])
}

func TestSettingsSet_Error(t *testing.T) {
	cleanup, svc := installTestServices()
	defer cleanup()
	svc.settings.err = domain.ErrConfiguration

	_, err := executeCommand("settings", "set", "storage.type", "Cloud")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "failed to set storage.type")
}

func TestSettingsSet_RequiresKeyAndValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "set", "storage.type")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSettingsLocalIndexation(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    *bool
		wantOut string
	}{
		{name: "on", value: "on", want: domain.BoolPtr(true), wantOut: "Indexation on for document doc-1"},
		{name: "off", value: "OFF", want: domain.BoolPtr(false), wantOut: "Indexation off for document doc-1"},
		{name: "inherit", value: "inherit", want: nil, wantOut: "inherits the global indexation setting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup, svc := installTestServices()
			defer cleanup()

			out, err := executeCommand("settings", "local-indexation", "doc-1", tt.value)

			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
			got, ok := svc.settings.local["doc-1"]
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsLocalIndexation_InvalidValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "local-indexation", "doc-1", "maybe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "use on, off or inherit")
}

func TestSettingsCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := executeCommand("settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestJoinFileTypes(t *testing.T) {
	assert.Equal(t, "(none)", joinFileTypes(nil))
	assert.Equal(t, "pdf, excel", joinFileTypes([]domain.FileType{domain.FileTypePDF, domain.FileTypeExcel}))
}
