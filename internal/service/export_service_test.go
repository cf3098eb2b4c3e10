package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/storage"
)

func newExportFixture(t *testing.T) (*ExportService, evaluationFixture) {
	t.Helper()
	f := newEvaluationFixture()
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSigner("secret", time.Hour)
	svc := NewExportService(ExportSources{
		Courses:     f.courses,
		Roster:      f.students,
		Assessments: f.assessments,
		Grades:      f.grades,
		Attendance:  f.attendance,
		Evaluations: f.svc,
	}, store, signer, ExportConfig{APIPrefix: "/api/v1/"}, nil)
	return svc, f
}

func readExport(t *testing.T, svc *ExportService, result *ExportResult) string {
	t.Helper()
	file, _, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	return string(data)
}

func TestExportServiceGradebookCSV(t *testing.T) {
	svc, _ := newExportFixture(t)
	job := &models.ReportJob{ID: "job-1", Type: models.ReportTypeGradebook, Params: models.ReportJobParams{CourseID: "c1", Year: 2024, Format: models.ReportFormatCSV}}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.Contains(t, result.RelativePath, "gradebook-3a-job-1")

	content := readExport(t, svc, result)
	assert.Contains(t, content, "P1 10/02 Unit 1")
	assert.Contains(t, content, "8.00")
	assert.Contains(t, content, "\"Lopez, Ana\"")

	decoded, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", decoded.JobID)
	assert.Equal(t, result.RelativePath, decoded.Path)
}

func TestExportServiceEvaluationAndAttendance(t *testing.T) {
	svc, _ := newExportFixture(t)

	eval, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-2", Type: models.ReportTypeEvaluation, Params: models.ReportJobParams{CourseID: "c1", Format: models.ReportFormatCSV}})
	require.NoError(t, err)
	content := readExport(t, svc, eval)
	assert.Contains(t, content, "P3 remediation")
	assert.Contains(t, content, "CANNOT_ATTEND")

	att, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-3", Type: models.ReportTypeAttendance, Params: models.ReportJobParams{CourseID: "c1", Year: 2024, Format: models.ReportFormatPDF}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(readExport(t, svc, att), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)
	_, err := svc.Generate(context.Background(), &models.ReportJob{ID: "job-4", Type: models.ReportTypeGradebook, Params: models.ReportJobParams{CourseID: "c1", Format: "xlsx"}})
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "3-a-history", slug(" 3 A / History "))
	assert.Equal(t, "course", slug("***"))
}
