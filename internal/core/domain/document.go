package domain

import "time"

// Layouts a hosting system can assign to a document.
const (
	// LayoutDefault is the hosting system's plain file view.
	LayoutDefault = "file_view"

	// LayoutViewer is the page-by-page document viewer.
	LayoutViewer = "documentviewer"
)

// Document represents an uploaded file owned by the hosting system.
// The conversion pipeline reads its content and may switch its layout;
// everything else about it belongs to the host.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload name, used for type detection.
	Filename string

	// MIMEType is the declared content type, if known.
	MIMEType string

	// Content is the raw file bytes.
	Content []byte

	// Layout is the presentation layout selected for the document.
	Layout string

	// CreatedAt is when the document was first uploaded.
	CreatedAt time.Time

	// ModifiedAt is when the content was last replaced.
	ModifiedAt time.Time
}

// FileType returns the detected file-type group of the document.
func (d *Document) FileType() FileType {
	return DetectFileType(d.Filename, d.MIMEType)
}

// DocumentEventKind identifies what happened to a document.
type DocumentEventKind string

// Document event kinds emitted by the hosting system.
const (
	DocumentCreated  DocumentEventKind = "created"
	DocumentModified DocumentEventKind = "modified"
	DocumentDeleted  DocumentEventKind = "deleted"
)

// DocumentEvent is a create/modify/delete notification from the host.
type DocumentEvent struct {
	// Kind is the type of change.
	Kind DocumentEventKind

	// DocumentID identifies the changed document.
	DocumentID string

	// ContentHash is the content fingerprint at the time of the event.
	// Empty for deletions.
	ContentHash string
}
