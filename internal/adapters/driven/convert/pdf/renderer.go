package pdf

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the resolution pages are rasterised at before scaling.
// A US Letter page at 150 DPI is 1275px wide, above the large width.
const DefaultDPI = 150

// Renderer opens PDF content for rasterisation.
type Renderer interface {
	Open(content []byte) (RenderedDocument, error)
}

// RenderedDocument is an open PDF. Pages are zero-based.
type RenderedDocument interface {
	NumPage() int
	Image(page int) (image.Image, error)
	Text(page int) (string, error)
	Close() error
}

// FitzRenderer renders pages with MuPDF.
type FitzRenderer struct {
	dpi float64
}

// NewFitzRenderer creates a renderer at the given DPI.
// A non-positive dpi uses DefaultDPI.
func NewFitzRenderer(dpi float64) *FitzRenderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzRenderer{dpi: dpi}
}

// Open loads the document from memory.
func (r *FitzRenderer) Open(content []byte) (RenderedDocument, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &fitzDocument{doc: doc, dpi: r.dpi}, nil
}

// fitzDocument is safe for concurrent use, go-fitz locks per document.
type fitzDocument struct {
	doc *fitz.Document
	dpi float64
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Image(page int) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return img, nil
}

func (d *fitzDocument) Text(page int) (string, error) {
	text, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("extract text of page %d: %w", page+1, err)
	}
	return text, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
