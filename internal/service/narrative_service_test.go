package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/export"
)

type capturingRenderer struct {
	doc export.Document
	err error
}

func (r *capturingRenderer) RenderDocument(d export.Document) ([]byte, error) {
	r.doc = d
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

func TestNarrativeServiceBuild(t *testing.T) {
	f := newEvaluationFixture()
	svc := NewNarrativeService(f.svc, &capturingRenderer{}, nil)

	report, err := svc.Build(context.Background(), owner, "c1", "st1", 0)
	require.NoError(t, err)
	assert.Equal(t, "History", report.Subject)
	assert.Equal(t, 2024, report.Year)
	assert.False(t, report.Excluded)
	assert.NotEmpty(t, report.Text)
	assert.Contains(t, report.Text, "Ana")
}

func TestNarrativeServiceRenderPDF(t *testing.T) {
	f := newEvaluationFixture()
	renderer := &capturingRenderer{}
	svc := NewNarrativeService(f.svc, renderer, nil)

	data, filename, err := svc.RenderPDF(context.Background(), owner, "c1", "st1", 2024)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), data)
	assert.Equal(t, "narrative-st1-2024.pdf", filename)
	assert.Equal(t, "Lopez, Ana - History", renderer.doc.Title)
	assert.Len(t, renderer.doc.Sections, 5)

	renderer.err = errors.New("boom")
	_, _, err = svc.RenderPDF(context.Background(), owner, "c1", "st1", 2024)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
