package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(columns int) Table {
	t := Table{Title: "Gradebook", Subtitle: "Math 2024"}
	for i := 0; i < columns; i++ {
		t.Columns = append(t.Columns, "col")
	}
	t.Rows = [][]string{{"Pérez, Ana", "6.00"}, {"Lee, Bo"}}
	return t
}

func TestCSVRendererPadsRows(t *testing.T) {
	data, err := NewCSVRenderer().Render(Table{
		Columns: []string{"student", "average", "report"},
		Rows:    [][]string{{"Perez, Ana", "6.00", "TEP"}, {"Lee, Bo"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "student,average,report\n\"Perez, Ana\",6.00,TEP\n\"Lee, Bo\",,\n", string(data))
}

func TestRenderersRejectInvalidTables(t *testing.T) {
	_, err := NewCSVRenderer().Render(Table{})
	assert.Error(t, err)

	_, err = NewPDFRenderer().Render(Table{Columns: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}

func TestPDFRendererOutputsPDF(t *testing.T) {
	for _, cols := range []int{2, 10} {
		data, err := NewPDFRenderer().Render(sampleTable(cols))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	}
}

func TestPDFRenderDocument(t *testing.T) {
	data, err := NewPDFRenderer().RenderDocument(Document{
		Title:    "Narrative report",
		Sections: []Section{{Heading: "Attendance", Body: "Ana attended classes regularly."}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = NewPDFRenderer().RenderDocument(Document{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())
	assert.Equal(t, "application/pdf", r.ContentType())

	r, err = ForFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", r.ContentType())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
