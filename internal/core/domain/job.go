package domain

import "time"

// ConversionJob is a queued request to convert one document.
// It carries the global settings snapshot taken when the triggering
// event was handled; the document's local override is read by the
// worker at conversion time.
type ConversionJob struct {
	// ID uniquely identifies the job for logging.
	ID string `json:"id"`

	// DocumentID identifies the document to convert.
	DocumentID string `json:"document_id"`

	// ContentHash is the fingerprint observed by the triggering event.
	ContentHash string `json:"content_hash"`

	// Settings is the global settings snapshot.
	Settings GlobalSettings `json:"settings"`

	// Force bypasses the staleness check.
	Force bool `json:"force,omitempty"`

	// EnqueuedAt is when the job was queued.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// WorkerConfig holds conversion worker pool configuration.
type WorkerConfig struct {
	// Workers is the number of parallel conversion goroutines.
	Workers int

	// QueueSize is the capacity of the in-memory job queue.
	QueueSize int

	// RatePerSecond caps conversions started per second across workers.
	// Zero or negative means unlimited.
	RatePerSecond float64
}

// DefaultWorkerConfig returns sensible defaults for the worker pool.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Workers:       2,
		QueueSize:     256,
		RatePerSecond: 0,
	}
}
