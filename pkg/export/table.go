package export

import (
	"fmt"
	"strings"
)

// Table is an ordered tabular export. Short rows are padded with blanks.
type Table struct {
	Title    string
	Subtitle string
	Columns  []string
	Rows     [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Columns) {
			return fmt.Errorf("row %d has %d cells for %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}

func (t Table) cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Renderer encodes tables in one file format.
type Renderer interface {
	Render(Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer registered for a format name (csv or pdf).
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "csv":
		return NewCSVRenderer(), nil
	case "pdf":
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
