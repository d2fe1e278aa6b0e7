package driven

// Hasher computes the content fingerprint used for staleness detection.
// Implementations are deterministic and pure.
type Hasher interface {
	// Hash returns the fingerprint of content.
	Hash(content []byte) string
}
