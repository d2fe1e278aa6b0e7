// Package fingerprint computes content fingerprints with keyed BLAKE3.
package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Ensure Hasher implements the interface.
var _ driven.Hasher = (*Hasher)(nil)

// contentKey domain-separates document fingerprints from any other
// BLAKE3 use. It is exactly 32 bytes.
var contentKey = [32]byte{
	'd', 'o', 'c', 'u', 'm', 'e', 'n', 't', 'v', 'i', 'e', 'w', 'e', 'r', '.', 'c',
	'o', 'n', 't', 'e', 'n', 't', '.', 'v', '1', 0, 0, 0, 0, 0, 0, 0,
}

// Hasher fingerprints document content.
type Hasher struct {
	key [32]byte
}

// New creates a hasher with the content key.
func New() *Hasher {
	return &Hasher{key: contentKey}
}

// Hash returns the hex-encoded 256-bit keyed digest of content.
func (h *Hasher) Hash(content []byte) string {
	hasher, err := blake3.NewKeyed(h.key[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes.
		panic(err)
	}
	_, _ = hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}
