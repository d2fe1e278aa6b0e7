package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStorageType       = "storage.type"
	KeyStorageLocation   = "storage.location"
	KeyAutoSelectLayout  = "layout.auto_select"
	KeyLayoutFileTypes   = "layout.file_types"
	KeyEnableIndexation  = "indexation.enabled"
	KeyAutoConvert       = "conversion.auto_convert"
	KeyImageFormat       = "conversion.image_format"
	KeyConversionTimeout = "conversion.timeout_seconds"
	KeyWorkerCount       = "worker.count"
	KeyWorkerQueueSize   = "worker.queue_size"
	KeyWorkerRate        = "worker.rate_per_second"
	KeyQueueBackend      = "queue.backend"
	KeyQueueRedisAddr    = "queue.redis_addr"
	KeyHTTPAddr          = "http.addr"
	KeyWatchDir          = "watch.dir"
)

// plainKeys are stored as given without touching the settings snapshot.
var plainKeys = map[string]bool{
	KeyQueueBackend:   true,
	KeyQueueRedisAddr: true,
	KeyHTTPAddr:       true,
	KeyWatchDir:       true,
}

// SettingsService loads global settings into an immutable snapshot and
// resolves the effective settings of individual documents.
type SettingsService struct {
	configStore driven.ConfigStore
	documents   driven.DocumentStore
	metadata    driven.MetadataStore
	locks       *KeyLock

	snapshot atomic.Pointer[domain.GlobalSettings]
}

// NewSettingsService creates a new settings service and loads the
// initial snapshot. An invalid configuration is kept and reported by
// Resolve so conversions fail fast instead of running with a fallback.
func NewSettingsService(
	configStore driven.ConfigStore,
	documents driven.DocumentStore,
	metadata driven.MetadataStore,
	locks *KeyLock,
) *SettingsService {
	if locks == nil {
		locks = NewKeyLock()
	}
	s := &SettingsService{
		configStore: configStore,
		documents:   documents,
		metadata:    metadata,
		locks:       locks,
	}
	settings := s.load()
	s.snapshot.Store(&settings)
	return s
}

// Global returns the current immutable global settings snapshot.
func (s *SettingsService) Global() domain.GlobalSettings {
	return s.snapshot.Load().Clone()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.GlobalSettings {
	return domain.DefaultGlobalSettings()
}

// Reload re-reads global settings from configuration storage and swaps
// the snapshot. A configuration error is returned but the new snapshot
// still replaces the old one, so every later resolution reports it too.
func (s *SettingsService) Reload() error {
	if err := s.configStore.Load(); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	settings := s.load()
	s.snapshot.Store(&settings)
	return settings.Validate()
}

// Save validates, persists and publishes new global settings.
func (s *SettingsService) Save(settings *domain.GlobalSettings) error {
	if settings == nil {
		return fmt.Errorf("save settings: %w", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	fileTypes := make([]string, 0, len(settings.AutoLayoutFileTypes))
	for _, t := range settings.AutoLayoutFileTypes {
		fileTypes = append(fileTypes, t.String())
	}
	values := []struct {
		key   string
		value any
	}{
		{KeyStorageType, settings.StorageType.String()},
		{KeyStorageLocation, settings.StorageLocation},
		{KeyAutoSelectLayout, settings.AutoSelectLayout},
		{KeyLayoutFileTypes, fileTypes},
		{KeyEnableIndexation, settings.EnableIndexation},
		{KeyAutoConvert, settings.AutoConvert},
		{KeyImageFormat, settings.ImageFormat.String()},
		{KeyConversionTimeout, int(settings.ConversionTimeout / time.Second)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	published := settings.Clone()
	s.snapshot.Store(&published)
	return nil
}

// SetValue parses and stores a single configuration key given as text,
// as typed on the command line.
func (s *SettingsService) SetValue(key, value string) error {
	if plainKeys[key] {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return s.configStore.Save()
	}

	switch key {
	case KeyWorkerCount, KeyWorkerQueueSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		if err := s.configStore.Set(key, n); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return s.configStore.Save()
	case KeyWorkerRate:
		r, err := strconv.ParseFloat(value, 64)
		if err != nil || r < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		if err := s.configStore.Set(key, r); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return s.configStore.Save()
	}

	settings := s.Global()
	if err := applyValue(&settings, key, value); err != nil {
		return err
	}
	return s.Save(&settings)
}

// applyValue updates one GlobalSettings field from its text form.
func applyValue(settings *domain.GlobalSettings, key, value string) error {
	switch key {
	case KeyStorageType:
		t, ok := parseStorageType(value)
		if !ok {
			return fmt.Errorf("%w: storage type must be Blob or File", domain.ErrInvalidInput)
		}
		settings.StorageType = t
	case KeyStorageLocation:
		settings.StorageLocation = value
	case KeyAutoSelectLayout, KeyEnableIndexation, KeyAutoConvert:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		switch key {
		case KeyAutoSelectLayout:
			settings.AutoSelectLayout = b
		case KeyEnableIndexation:
			settings.EnableIndexation = b
		default:
			settings.AutoConvert = b
		}
	case KeyLayoutFileTypes:
		names := strings.Split(value, ",")
		if strings.TrimSpace(value) == "" {
			names = nil
		}
		types := domain.ParseFileTypes(names)
		if len(types) != len(names) {
			return fmt.Errorf("%w: unknown file type in %q", domain.ErrInvalidInput, value)
		}
		settings.AutoLayoutFileTypes = types
	case KeyImageFormat:
		f, ok := parseImageFormat(value)
		if !ok {
			return fmt.Errorf("%w: image format must be png or jpeg", domain.ErrInvalidInput)
		}
		settings.ImageFormat = f
	case KeyConversionTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		settings.ConversionTimeout = time.Duration(n) * time.Second
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// Resolve returns the effective settings of a document.
func (s *SettingsService) Resolve(ctx context.Context, documentID string) (domain.EffectiveSettings, error) {
	meta, err := s.metadata.GetMetadata(ctx, documentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.EffectiveSettings{}, fmt.Errorf("load metadata of %s: %w", documentID, err)
	}
	return domain.Resolve(s.snapshot.Load().Clone(), meta.LocalOverride())
}

// SetLocalIndexation sets or clears a document's indexation override.
// It waits for a running conversion of the document to finish so the
// override never races a status update. The document must exist.
func (s *SettingsService) SetLocalIndexation(ctx context.Context, documentID string, enabled *bool) error {
	unlock, err := s.locks.Lock(ctx, documentID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.documents.GetDocument(ctx, documentID); err != nil {
		return fmt.Errorf("local override of %s: %w", documentID, err)
	}

	meta, err := s.metadata.GetMetadata(ctx, documentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		meta = &domain.Metadata{DocumentID: documentID}
	case err != nil:
		return fmt.Errorf("load metadata of %s: %w", documentID, err)
	}

	meta.EnableIndexation = nil
	if enabled != nil {
		meta.EnableIndexation = domain.BoolPtr(*enabled)
	}
	if err := s.metadata.SaveMetadata(ctx, meta); err != nil {
		return fmt.Errorf("save metadata of %s: %w", documentID, err)
	}
	return nil
}

// WorkerConfig returns the worker pool configuration.
func (s *SettingsService) WorkerConfig() domain.WorkerConfig {
	defaults := domain.DefaultWorkerConfig()
	return domain.WorkerConfig{
		Workers:       s.getInt(KeyWorkerCount, defaults.Workers),
		QueueSize:     s.getInt(KeyWorkerQueueSize, defaults.QueueSize),
		RatePerSecond: s.configStore.GetFloat(KeyWorkerRate),
	}
}

// String returns a plain configuration value such as the HTTP address.
func (s *SettingsService) String(key, defaultVal string) string {
	return s.getString(key, defaultVal)
}

func (s *SettingsService) load() domain.GlobalSettings {
	defaults := domain.DefaultGlobalSettings()

	settings := domain.GlobalSettings{
		StorageType:         defaults.StorageType,
		StorageLocation:     s.configStore.GetString(KeyStorageLocation),
		AutoSelectLayout:    s.getBool(KeyAutoSelectLayout, defaults.AutoSelectLayout),
		AutoLayoutFileTypes: defaults.AutoLayoutFileTypes,
		AutoConvert:         s.getBool(KeyAutoConvert, defaults.AutoConvert),
		EnableIndexation:    s.getBool(KeyEnableIndexation, defaults.EnableIndexation),
		ImageFormat:         defaults.ImageFormat,
		ConversionTimeout:   defaults.ConversionTimeout,
	}

	// Unrecognised values are kept as written so Validate reports them.
	if raw := s.configStore.GetString(KeyStorageType); raw != "" {
		settings.StorageType = domain.StorageType(raw)
		if t, ok := parseStorageType(raw); ok {
			settings.StorageType = t
		}
	}
	if _, exists := s.configStore.Get(KeyLayoutFileTypes); exists {
		settings.AutoLayoutFileTypes = domain.ParseFileTypes(s.configStore.GetStringSlice(KeyLayoutFileTypes))
	}
	if raw := s.configStore.GetString(KeyImageFormat); raw != "" {
		settings.ImageFormat = domain.ImageFormat(raw)
		if f, ok := parseImageFormat(raw); ok {
			settings.ImageFormat = f
		}
	}
	if _, exists := s.configStore.Get(KeyConversionTimeout); exists {
		settings.ConversionTimeout = time.Duration(s.configStore.GetInt(KeyConversionTimeout)) * time.Second
	}
	return settings
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseStorageType(value string) (domain.StorageType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "blob":
		return domain.StorageBlob, true
	case "file":
		return domain.StorageFile, true
	default:
		return "", false
	}
}

func parseImageFormat(value string) (domain.ImageFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "png":
		return domain.ImageFormatPNG, true
	case "jpeg", "jpg":
		return domain.ImageFormatJPEG, true
	default:
		return "", false
	}
}
