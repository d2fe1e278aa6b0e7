package office

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Verify interface compliance.
var _ driven.FormatConverter = (*Converter)(nil)

const (
	// ConverterName identifies the office converter.
	ConverterName = "office"

	// DefaultCommand is the LibreOffice binary looked up on PATH.
	DefaultCommand = "soffice"

	// inputName is the scratch file stem. LibreOffice names its output
	// after the stem, so outputName never carries the source extension.
	inputName  = "document"
	outputName = "document.pdf"

	// maxOutput caps the command output quoted in errors.
	maxOutput = 512
)

// Option configures a Converter.
type Option func(*Converter)

// WithCommand overrides the LibreOffice binary.
func WithCommand(command string) Option {
	return func(c *Converter) {
		if command != "" {
			c.command = command
		}
	}
}

// WithRunner overrides how the command is executed.
func WithRunner(runner driven.CommandRunner) Option {
	return func(c *Converter) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// Converter prints office documents to PDF and delegates to a PDF converter.
type Converter struct {
	pdf     driven.FormatConverter
	command string
	runner  driven.CommandRunner
}

// New creates an office converter delegating rendered PDFs to pdf.
func New(pdf driven.FormatConverter, opts ...Option) *Converter {
	c := &Converter{
		pdf:     pdf,
		command: DefaultCommand,
		runner:  ExecRunner{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the converter name.
func (c *Converter) Name() string {
	return ConverterName
}

// FileTypes returns the groups routed through LibreOffice.
func (c *Converter) FileTypes() []domain.FileType {
	return []domain.FileType{
		domain.FileTypeWord,
		domain.FileTypeExcel,
		domain.FileTypePPT,
		domain.FileTypeRTF,
		domain.FileTypeText,
	}
}

// Convert prints content to PDF in a scratch directory and converts the PDF.
func (c *Converter) Convert(ctx context.Context, content []byte, opts driven.ConvertOptions) ([]domain.Page, error) {
	dir, err := os.MkdirTemp("", "documentviewer-office-")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch directory: %v", domain.ErrConversionFailed, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("office: remove scratch directory %s: %v", dir, err)
		}
	}()

	input := inputFile(opts.Extension)
	if err := os.WriteFile(filepath.Join(dir, input), content, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write input: %v", domain.ErrConversionFailed, err)
	}

	logger.Debug("office: running %s on %s in %s", c.command, input, dir)
	out, err := c.runner.Run(ctx, dir, c.command, c.args(dir, input)...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", domain.ErrConversionFailed, c.command, err, truncate(out))
	}

	pdf, err := os.ReadFile(filepath.Join(dir, outputName))
	if err != nil {
		return nil, fmt.Errorf("%w: %s produced no pdf: %s", domain.ErrConversionFailed, c.command, truncate(out))
	}
	return c.pdf.Convert(ctx, pdf, opts)
}

// args builds the headless conversion command line. A private profile in
// the scratch directory lets conversions run in parallel.
func (c *Converter) args(dir, input string) []string {
	return []string{
		"--headless",
		"-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(dir, "profile")),
		"--convert-to", "pdf",
		"--outdir", dir,
		input,
	}
}

// inputFile names the scratch copy after the source extension so
// LibreOffice picks the import filter by name. Extensions that are not
// short alphanumeric runs are dropped.
func inputFile(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) < 2 || len(ext) > 9 || ext[0] != '.' || ext == ".pdf" {
		return inputName
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return inputName
		}
	}
	return inputName + ext
}

func truncate(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutput {
		return s[:maxOutput] + "..."
	}
	return s
}
