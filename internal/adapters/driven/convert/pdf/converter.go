package pdf

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/documentviewer/internal/adapters/driven/convert/imaging"
	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FormatConverter = (*Converter)(nil)

// ConverterName identifies the PDF converter.
const ConverterName = "pdf"

// renderLimit bounds the pages rendered and scaled at once.
const renderLimit = 4

var disableConfigDir sync.Once

// Converter turns PDF content into pages.
type Converter struct {
	renderer Renderer
}

// New creates a PDF converter. A nil renderer uses MuPDF at DefaultDPI.
func New(renderer Renderer) *Converter {
	disableConfigDir.Do(api.DisableConfigDir)
	if renderer == nil {
		renderer = NewFitzRenderer(DefaultDPI)
	}
	return &Converter{renderer: renderer}
}

// Name returns the converter name.
func (c *Converter) Name() string {
	return ConverterName
}

// FileTypes returns the groups handled by this converter.
func (c *Converter) FileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}

// Convert validates the PDF, renders every page and extracts its text.
func (c *Converter) Convert(ctx context.Context, content []byte, opts driven.ConvertOptions) ([]domain.Page, error) {
	format := opts.ImageFormat
	if format == "" {
		format = domain.ImageFormatPNG
	}

	count, err := PageCount(content)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrConversionFailed)
	}

	doc, err := c.renderer.Open(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}
	defer doc.Close()

	if n := doc.NumPage(); n != count {
		return nil, fmt.Errorf("%w: page count mismatch: validator %d, renderer %d",
			domain.ErrConversionFailed, count, n)
	}

	pages := make([]domain.Page, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderLimit)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := renderPage(doc, i, format)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}
	return pages, nil
}

// PageCount validates content in relaxed mode and returns its page count.
func PageCount(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	count, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid pdf: %v", domain.ErrConversionFailed, err)
	}
	return count, nil
}

func renderPage(doc RenderedDocument, index int, format domain.ImageFormat) (domain.Page, error) {
	img, err := doc.Image(index)
	if err != nil {
		return domain.Page{}, err
	}
	set, err := imaging.Thumbnails(img, format)
	if err != nil {
		return domain.Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}
	text, err := doc.Text(index)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{
		Number: index + 1,
		Large:  set.Large,
		Normal: set.Normal,
		Small:  set.Small,
		Text:   text,
	}, nil
}
