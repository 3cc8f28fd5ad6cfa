package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a tabular report: ordered headers plus rows keyed by header name.
// Missing cells render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// row projects one record onto the header order.
func (d Dataset) row(cells map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		out[i] = cells[h]
	}
	return out
}

// CSVExporter renders a Dataset as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header line followed by every row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, cells := range data.Rows {
		if err := w.Write(data.row(cells)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
