package driving

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// SettingsService manages global settings and resolves per-document
// effective settings.
type SettingsService interface {
	// Global returns the current immutable global settings snapshot.
	Global() domain.GlobalSettings

	// GetDefaults returns default settings.
	GetDefaults() domain.GlobalSettings

	// Save validates, persists and publishes new global settings.
	Save(settings *domain.GlobalSettings) error

	// Reload re-reads global settings from configuration storage.
	Reload() error

	// SetValue parses and persists one configuration key given as text.
	SetValue(key, value string) error

	// Resolve returns the effective settings of a document using the
	// current global snapshot and the document's local override.
	Resolve(ctx context.Context, documentID string) (domain.EffectiveSettings, error)

	// SetLocalIndexation sets or clears (nil) a document's indexation override.
	// The change applies from the document's next conversion.
	SetLocalIndexation(ctx context.Context, documentID string, enabled *bool) error
}
