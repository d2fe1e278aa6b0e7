package services

import (
	"sync"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// FormatRegistry maps file-type groups to conversion strategies.
// Adding a format means registering a converter, not changing the
// ConverterService.
type FormatRegistry struct {
	mu         sync.RWMutex
	converters map[domain.FileType]driven.FormatConverter
}

// NewFormatRegistry creates a registry with the given converters.
func NewFormatRegistry(converters ...driven.FormatConverter) *FormatRegistry {
	r := &FormatRegistry{
		converters: make(map[domain.FileType]driven.FormatConverter),
	}
	for _, c := range converters {
		r.Register(c)
	}
	return r
}

// Register adds a converter for every file type it declares.
// A later registration for the same type replaces the earlier one.
func (r *FormatRegistry) Register(c driven.FormatConverter) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range c.FileTypes() {
		if t.IsValid() {
			r.converters[t] = c
		}
	}
}

// Lookup returns the converter registered for a file type.
func (r *FormatRegistry) Lookup(t domain.FileType) (driven.FormatConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[t]
	return c, ok
}

// Supports returns true if a converter is registered for the file type.
func (r *FormatRegistry) Supports(t domain.FileType) bool {
	_, ok := r.Lookup(t)
	return ok
}

// SupportedFileTypes returns the registered file types in canonical order.
func (r *FormatRegistry) SupportedFileTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.FileType
	for _, t := range domain.AllFileTypes() {
		if _, ok := r.converters[t]; ok {
			result = append(result, t)
		}
	}
	return result
}
