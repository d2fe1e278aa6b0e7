// Package pdf converts PDF documents into page images and page text.
//
// pdfcpu validates the file and counts its pages; MuPDF (through go-fitz)
// rasterises each page and extracts its text. Rendered pages are scaled to
// the viewer widths by the imaging package.
package pdf
