package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthPortrait  = 190.0
	pageWidthLandscape = 277.0
	landscapeColumns   = 7
)

// Section is a headed block of prose in a document.
type Section struct {
	Heading string
	Body    string
}

// Document is a prose export such as a student narrative.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

// PDFRenderer lays out tables and documents with gofpdf.
type PDFRenderer struct{}

// NewPDFRenderer builds a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// ContentType implements Renderer.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (r *PDFRenderer) Extension() string { return "pdf" }

// Render draws the table, switching to landscape for wide tables.
func (r *PDFRenderer) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	orientation, width := "P", pageWidthPortrait
	if len(t.Columns) > landscapeColumns {
		orientation, width = "L", pageWidthLandscape
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	writeHeading(pdf, tr, t.Title, t.Subtitle)

	colWidth := width / float64(len(t.Columns))
	pdf.SetFont("Arial", "B", 9)
	for _, c := range t.Columns {
		pdf.CellFormat(colWidth, 8, tr(c), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range t.Rows {
		for i := range t.Columns {
			pdf.CellFormat(colWidth, 7, tr(t.cell(row, i)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderDocument draws headed paragraphs on portrait pages.
func (r *PDFRenderer) RenderDocument(d Document) ([]byte, error) {
	if len(d.Sections) == 0 {
		return nil, fmt.Errorf("pdf document requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	writeHeading(pdf, tr, d.Title, d.Subtitle)

	for _, s := range d.Sections {
		if s.Heading != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(s.Heading), "", 1, "", false, 0, "")
		}
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(s.Body), "", "J", false)
		pdf.Ln(3)
	}
	return output(pdf)
}

func writeHeading(pdf *gofpdf.Fpdf, tr func(string) string, title, subtitle string) {
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(subtitle), "", 1, "C", false, 0, "")
	}
	if title != "" || subtitle != "" {
		pdf.Ln(4)
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
