package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"
)

const unknownDescription = "Unknown"

// StorageType selects where converted artifacts are kept.
type StorageType string

// Available storage backends.
const (
	// StorageBlob keeps artifacts inside the application database.
	StorageBlob StorageType = "Blob"

	// StorageFile keeps artifacts in a directory tree under StorageLocation.
	StorageFile StorageType = "File"
)

// IsValid returns true if the storage type is recognised.
func (s StorageType) IsValid() bool {
	return s == StorageBlob || s == StorageFile
}

// String returns the string representation.
func (s StorageType) String() string {
	return string(s)
}

// Description returns a human-readable description of the backend.
func (s StorageType) Description() string {
	switch s {
	case StorageBlob:
		return "Blob (stored in the database)"
	case StorageFile:
		return "File (stored on the filesystem)"
	default:
		return unknownDescription
	}
}

// ImageFormat is the encoding used for page images.
type ImageFormat string

// Available page image formats.
const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
)

// IsValid returns true if the image format is recognised.
func (f ImageFormat) IsValid() bool {
	return f == ImageFormatPNG || f == ImageFormatJPEG
}

// Extension returns the file extension for the format, including the dot.
func (f ImageFormat) Extension() string {
	if f == ImageFormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// String returns the string representation.
func (f ImageFormat) String() string {
	return string(f)
}

// GlobalSettings is the process-wide configuration snapshot.
// It is loaded once and replaced wholesale on reload; it is never
// mutated in place while conversions read it.
type GlobalSettings struct {
	// StorageType is the artifact backend. Not overridable per document.
	StorageType StorageType `json:"storage_type"`

	// StorageLocation is the filesystem root for the File backend.
	StorageLocation string `json:"storage_location,omitempty"`

	// AutoSelectLayout switches converted documents to the viewer layout.
	AutoSelectLayout bool `json:"auto_select_layout"`

	// AutoLayoutFileTypes limits AutoSelectLayout to these groups.
	AutoLayoutFileTypes []FileType `json:"auto_layout_file_types"`

	// AutoConvert enqueues a conversion on every create/modify event.
	AutoConvert bool `json:"auto_convert"`

	// EnableIndexation is the default for building a text catalog.
	EnableIndexation bool `json:"enable_indexation"`

	// ImageFormat is the encoding of page images.
	ImageFormat ImageFormat `json:"image_format"`

	// ConversionTimeout bounds one external conversion call.
	ConversionTimeout time.Duration `json:"conversion_timeout"`
}

// DefaultGlobalSettings returns settings with sensible defaults.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		StorageType:         StorageBlob,
		AutoSelectLayout:    true,
		AutoLayoutFileTypes: []FileType{FileTypePDF, FileTypeWord, FileTypePPT},
		AutoConvert:         true,
		EnableIndexation:    true,
		ImageFormat:         ImageFormatPNG,
		ConversionTimeout:   5 * time.Minute,
	}
}

// Validate reports configuration errors that must stop conversion
// before it starts. The returned error wraps ErrConfiguration.
func (g GlobalSettings) Validate() error {
	if !g.StorageType.IsValid() {
		return fmt.Errorf("%w: unknown storage type %q", ErrConfiguration, g.StorageType)
	}
	if g.StorageType == StorageFile {
		if g.StorageLocation == "" {
			return fmt.Errorf("%w: storage type File requires a storage location", ErrConfiguration)
		}
		if !filepath.IsAbs(g.StorageLocation) {
			return fmt.Errorf("%w: storage location %q must be an absolute path", ErrConfiguration, g.StorageLocation)
		}
	}
	if !g.ImageFormat.IsValid() {
		return fmt.Errorf("%w: unknown image format %q", ErrConfiguration, g.ImageFormat)
	}
	if g.ConversionTimeout <= 0 {
		return fmt.Errorf("%w: conversion timeout must be positive", ErrConfiguration)
	}
	return nil
}

// Clone returns a copy that shares no slices with g.
func (g GlobalSettings) Clone() GlobalSettings {
	g.AutoLayoutFileTypes = slices.Clone(g.AutoLayoutFileTypes)
	return g
}

// LocalOverride is the per-document subset of settings.
// A nil field means "inherit from the global settings".
type LocalOverride struct {
	// EnableIndexation overrides GlobalSettings.EnableIndexation.
	EnableIndexation *bool
}

// EffectiveSettings is the resolved configuration for one conversion run.
type EffectiveSettings struct {
	StorageType         StorageType
	StorageLocation     string
	AutoSelectLayout    bool
	AutoLayoutFileTypes []FileType
	EnableIndexation    bool
	ImageFormat         ImageFormat
	ConversionTimeout   time.Duration
}

// Resolve merges global settings with a per-document override.
// Keys present in the override win; absent keys fall back to global.
// Resolve is pure: it can be recomputed at any time from its inputs.
func Resolve(global GlobalSettings, local LocalOverride) (EffectiveSettings, error) {
	if err := global.Validate(); err != nil {
		return EffectiveSettings{}, err
	}

	effective := EffectiveSettings{
		StorageType:         global.StorageType,
		StorageLocation:     global.StorageLocation,
		AutoSelectLayout:    global.AutoSelectLayout,
		AutoLayoutFileTypes: slices.Clone(global.AutoLayoutFileTypes),
		EnableIndexation:    global.EnableIndexation,
		ImageFormat:         global.ImageFormat,
		ConversionTimeout:   global.ConversionTimeout,
	}
	if local.EnableIndexation != nil {
		effective.EnableIndexation = *local.EnableIndexation
	}
	return effective, nil
}

// ShouldAutoLayout returns true if a successful conversion of a document
// of the given type switches it to the viewer layout.
func (e EffectiveSettings) ShouldAutoLayout(t FileType) bool {
	return e.AutoSelectLayout && slices.Contains(e.AutoLayoutFileTypes, t)
}

// Location returns where artifacts for these settings are stored.
func (e EffectiveSettings) Location() ArtifactLocation {
	loc := ArtifactLocation{Type: e.StorageType}
	if e.StorageType == StorageFile {
		loc.Path = e.StorageLocation
	}
	return loc
}

// BoolPtr returns a pointer to b. Used for LocalOverride fields.
func BoolPtr(b bool) *bool {
	return &b
}
