package driven

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// ConvertOptions configures a single format conversion.
type ConvertOptions struct {
	// ImageFormat is the encoding of the page images.
	ImageFormat domain.ImageFormat

	// Extension is the source file extension with its dot, such as
	// ".docx". Tools that detect the input format by name use it.
	Extension string
}

// FormatConverter converts documents of one family of file types into pages.
// Implementations call out to external tools and must honour ctx
// cancellation so the conversion timeout can bound them.
type FormatConverter interface {
	// Name identifies the converter in logs and status messages.
	Name() string

	// FileTypes returns the file-type groups this converter handles.
	FileTypes() []domain.FileType

	// Convert returns the pages of the document in order.
	// An error wraps domain.ErrConversionFailed.
	Convert(ctx context.Context, content []byte, opts ConvertOptions) ([]domain.Page, error)
}

// CommandRunner executes external commands.
type CommandRunner interface {
	// Run executes name with args in dir and returns its combined output.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}
