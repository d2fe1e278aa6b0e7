package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "page-0001.png", ArtifactName(ArtifactNormal, 1, ImageFormatPNG))
	assert.Equal(t, "page-0012.jpg", ArtifactName(ArtifactLarge, 12, ImageFormatJPEG))
	assert.Equal(t, "page-0003.txt", ArtifactName(ArtifactText, 3, ImageFormatPNG))
}

func TestArtifactName_SortsInPageOrder(t *testing.T) {
	assert.Less(t, ArtifactName(ArtifactSmall, 9, ImageFormatPNG), ArtifactName(ArtifactSmall, 10, ImageFormatPNG))
}

func TestArtifactKind_IsImage(t *testing.T) {
	assert.True(t, ArtifactNormal.IsImage())
	assert.True(t, ArtifactSmall.IsImage())
	assert.True(t, ArtifactLarge.IsImage())
	assert.False(t, ArtifactText.IsImage())
	assert.False(t, ArtifactKind("thumb").IsImage())
}

func TestAllArtifactKinds(t *testing.T) {
	kinds := AllArtifactKinds()
	assert.Len(t, kinds, 4)
	for _, k := range kinds {
		assert.True(t, k.IsValid())
	}
}

func TestPage_Artifact(t *testing.T) {
	page := Page{
		Number: 1,
		Large:  []byte("L"),
		Normal: []byte("N"),
		Small:  []byte("S"),
		Text:   "hello",
	}

	assert.Equal(t, []byte("L"), page.Artifact(ArtifactLarge))
	assert.Equal(t, []byte("N"), page.Artifact(ArtifactNormal))
	assert.Equal(t, []byte("S"), page.Artifact(ArtifactSmall))
	assert.Equal(t, []byte("hello"), page.Artifact(ArtifactText))
	assert.Nil(t, page.Artifact("other"))
}

func TestArtifactLocation_IsZero(t *testing.T) {
	assert.True(t, ArtifactLocation{}.IsZero())
	assert.False(t, ArtifactLocation{Type: StorageBlob}.IsZero())
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[ArtifactKind]int
		expected int
		wantErr  bool
	}{
		{
			name:     "consistent set",
			counts:   map[ArtifactKind]int{ArtifactNormal: 2, ArtifactSmall: 2, ArtifactLarge: 2, ArtifactText: 2},
			expected: 2,
		},
		{
			name:     "empty set",
			counts:   map[ArtifactKind]int{},
			expected: 0,
		},
		{
			name:    "missing thumbnail",
			counts:  map[ArtifactKind]int{ArtifactNormal: 2, ArtifactSmall: 1, ArtifactLarge: 2, ArtifactText: 2},
			wantErr: true,
		},
		{
			name:    "text only",
			counts:  map[ArtifactKind]int{ArtifactText: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := PageCount(tt.counts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrStorage)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}
