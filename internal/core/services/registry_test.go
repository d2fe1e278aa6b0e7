package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

func TestFormatRegistry(t *testing.T) {
	pdf := newMockConverter(domain.FileTypePDF)
	office := newMockConverter(domain.FileTypeWord, domain.FileTypePPT, domain.FileType("bogus"))
	office.name = "office"

	registry := NewFormatRegistry(pdf, office, nil)

	c, ok := registry.Lookup(domain.FileTypeWord)
	assert.True(t, ok)
	assert.Equal(t, "office", c.Name())

	assert.True(t, registry.Supports(domain.FileTypePDF))
	assert.False(t, registry.Supports(domain.FileTypeExcel))
	assert.False(t, registry.Supports(domain.FileTypeUnknown))
	assert.Equal(t, []domain.FileType{domain.FileTypePDF, domain.FileTypeWord, domain.FileTypePPT}, registry.SupportedFileTypes())
}

func TestFormatRegistry_LaterRegistrationWins(t *testing.T) {
	first := newMockConverter(domain.FileTypePDF)
	second := newMockConverter(domain.FileTypePDF)
	second.name = "second"

	registry := NewFormatRegistry(first)
	registry.Register(second)

	c, ok := registry.Lookup(domain.FileTypePDF)
	assert.True(t, ok)
	assert.Equal(t, "second", c.Name())
}
