package domain

import "fmt"

// ArtifactKind is one of the per-page outputs of a conversion.
type ArtifactKind string

// Artifact kinds. Every converted page has exactly one artifact of each kind.
const (
	ArtifactNormal ArtifactKind = "normal"
	ArtifactSmall  ArtifactKind = "small"
	ArtifactLarge  ArtifactKind = "large"
	ArtifactText   ArtifactKind = "text"
)

// Page image widths in pixels.
const (
	LargeImageWidth  = 1000
	NormalImageWidth = 700
	SmallImageWidth  = 180
)

// IsValid returns true if the kind is recognised.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case ArtifactNormal, ArtifactSmall, ArtifactLarge, ArtifactText:
		return true
	default:
		return false
	}
}

// IsImage returns true for the three image kinds.
func (k ArtifactKind) IsImage() bool {
	return k.IsValid() && k != ArtifactText
}

// String returns the string representation.
func (k ArtifactKind) String() string {
	return string(k)
}

// AllArtifactKinds returns the four artifact kinds in storage order.
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactNormal, ArtifactSmall, ArtifactLarge, ArtifactText}
}

// ArtifactName returns the storage name of a page artifact. Names only
// differ by extension across kinds, so page i's artifacts correlate by
// index alone, and zero padding keeps lexical order equal to page order.
func ArtifactName(kind ArtifactKind, page int, format ImageFormat) string {
	ext := ".txt"
	if kind.IsImage() {
		ext = format.Extension()
	}
	return fmt.Sprintf("page-%04d%s", page, ext)
}

// Page is the converted output of a single document page.
type Page struct {
	// Number is the 1-based page index.
	Number int

	// Large, Normal and Small are the encoded page images.
	Large  []byte
	Normal []byte
	Small  []byte

	// Text is the extracted page text.
	Text string
}

// Artifact returns the bytes stored for the given kind.
func (p *Page) Artifact(kind ArtifactKind) []byte {
	switch kind {
	case ArtifactNormal:
		return p.Normal
	case ArtifactSmall:
		return p.Small
	case ArtifactLarge:
		return p.Large
	case ArtifactText:
		return []byte(p.Text)
	default:
		return nil
	}
}

// ArtifactLocation records which backend holds a document's artifacts.
// It is stored with the document so artifacts stay reachable after the
// global backend changes.
type ArtifactLocation struct {
	// Type is the storage backend.
	Type StorageType

	// Path is the filesystem root for the File backend; empty for Blob.
	Path string
}

// IsZero returns true if no artifacts were ever stored.
func (l ArtifactLocation) IsZero() bool {
	return l.Type == "" && l.Path == ""
}

// PageCount returns the common page count of an artifact set given the
// number of artifacts held per kind. Kinds that disagree leave the set in
// an inconsistent state, reported as an error wrapping ErrStorage.
func PageCount(counts map[ArtifactKind]int) (int, error) {
	n := counts[ArtifactText]
	for _, kind := range AllArtifactKinds() {
		if counts[kind] != n {
			return 0, fmt.Errorf("%w: %s holds %d pages, %s holds %d",
				ErrStorage, kind, counts[kind], ArtifactText, n)
		}
	}
	return n, nil
}
