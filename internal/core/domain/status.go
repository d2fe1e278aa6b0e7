package domain

import "time"

// MetadataNamespace is the annotation key under which the hosting
// system keeps a document's Metadata record.
const MetadataNamespace = "documentviewer"

// ConversionState is the converter state machine position of a document.
type ConversionState string

// Conversion states.
const (
	StateNotConverted ConversionState = "not_converted"
	StateConverting   ConversionState = "converting"
	StateConverted    ConversionState = "converted"
	StateFailed       ConversionState = "failed"
)

// ConversionStatus is the outcome of the latest conversion attempt.
type ConversionStatus struct {
	// Fingerprint is the content hash the status refers to.
	Fingerprint string

	// SuccessfullyConverted is true if the artifacts match Fingerprint.
	SuccessfullyConverted bool

	// NumPages is the number of pages in the artifact set.
	NumPages int

	// ConvertedAt is when the status was recorded.
	ConvertedAt time.Time

	// LastError holds the failure message of the latest attempt, if any.
	LastError string
}

// Metadata is the per-document annotation record. It is owned by the
// document and shares its lifetime.
type Metadata struct {
	// DocumentID identifies the owning document.
	DocumentID string

	// Status is nil until the first conversion attempt.
	Status *ConversionStatus

	// Catalog is the text index; nil when indexation is disabled.
	Catalog *Catalog

	// EnableIndexation is the local indexation override; nil inherits.
	EnableIndexation *bool

	// Storage is where the current artifact set lives.
	Storage ArtifactLocation
}

// FileHash returns the stored content fingerprint, or "" if never converted.
func (m *Metadata) FileHash() string {
	if m == nil || m.Status == nil {
		return ""
	}
	return m.Status.Fingerprint
}

// LastUpdated returns when the status was last recorded.
func (m *Metadata) LastUpdated() time.Time {
	if m == nil || m.Status == nil {
		return time.Time{}
	}
	return m.Status.ConvertedAt
}

// LocalOverride returns the per-document settings subset.
func (m *Metadata) LocalOverride() LocalOverride {
	if m == nil || m.EnableIndexation == nil {
		return LocalOverride{}
	}
	return LocalOverride{EnableIndexation: BoolPtr(*m.EnableIndexation)}
}

// State derives the settled state from the stored status.
// The converting state is only known to the running converter.
func (m *Metadata) State() ConversionState {
	switch {
	case m == nil || m.Status == nil:
		return StateNotConverted
	case m.Status.SuccessfullyConverted:
		return StateConverted
	default:
		return StateFailed
	}
}

// Clone returns a deep copy so a run can build its update without
// touching the stored record until it commits.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	if m.Status != nil {
		status := *m.Status
		c.Status = &status
	}
	if m.EnableIndexation != nil {
		c.EnableIndexation = BoolPtr(*m.EnableIndexation)
	}
	c.Catalog = m.Catalog.Clone()
	return &c
}
