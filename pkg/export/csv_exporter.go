package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes tables as RFC 4180 CSV with a header row.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// ContentType implements Renderer.
func (r *CSVRenderer) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (r *CSVRenderer) Extension() string { return "csv" }

// Render encodes the table; title and subtitle are not part of CSV output.
func (r *CSVRenderer) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			record[i] = t.cell(row, i)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
