// Package office converts word processing, spreadsheet, presentation, RTF
// and plain text documents by printing them to PDF with LibreOffice in
// headless mode and handing the result to the PDF converter.
package office
