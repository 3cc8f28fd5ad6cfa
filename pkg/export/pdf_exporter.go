package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Layout constants for a landscape A4 page with 10mm side margins.
const (
	pageWidth    = 277.0
	headerHeight = 8.0
	rowHeight    = 7.0
)

// PDFExporter renders a Dataset as a one-table landscape PDF with equal
// column widths.
type PDFExporter struct{}

// NewPDFExporter builds a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the optional title, a shaded header row, then one row per
// record. gofpdf handles page breaks itself.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		doc.Ln(5)
	}

	colWidth := pageWidth / float64(len(data.Headers))

	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(235, 235, 235)
	for _, h := range data.Headers {
		doc.CellFormat(colWidth, headerHeight, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 9)
	for _, cells := range data.Rows {
		for _, h := range data.Headers {
			doc.CellFormat(colWidth, rowHeight, cells[h], "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
