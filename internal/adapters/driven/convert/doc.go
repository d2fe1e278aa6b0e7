// Package convert groups the format conversion strategies registered with
// the services.FormatRegistry.
//
// Strategies:
//   - pdf: validates with pdfcpu, rasterises and extracts text with MuPDF
//   - office: converts office formats to PDF with LibreOffice, then delegates to pdf
//   - imaging: scales rendered pages to the large, normal and small widths
package convert
