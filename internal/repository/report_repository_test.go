package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
)

var reportJobRowColumns = []string{"id", "type", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func TestReportRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WithArgs(sqlmock.AnyArg(), models.ReportTypeGradebook, sqlmock.AnyArg(), models.ReportStatusQueued, 0, nil, "user-1", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypeGradebook,
		Params:    models.ReportJobParams{CourseID: "course-1", Year: 2024, Format: models.ReportFormatCSV},
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow(job.ID, "gradebook", `{"courseId":"course-1","year":2024,"format":"csv"}`, "QUEUED", 0, nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + reportJobColumns + " FROM report_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, "course-1", fetched.Params.CourseID)
	require.Equal(t, 2024, fetched.Params.Year)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	status := models.ReportStatusFinished
	progress := 100
	result := "/api/v1/reports/job-1/download?token=abc"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", ReportJobUpdate{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", ReportJobUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "attendance", `{"courseId":"course-1","year":2024,"format":"pdf"}`, "QUEUED", 0, nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + reportJobColumns + " FROM report_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ReportFormatPDF, jobs[0].Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "evaluation", `{"courseId":"course-1","year":2024,"format":"csv"}`, "FINISHED", 100, "/download", "user-1", time.Now().Add(-48*time.Hour), time.Now().Add(-25*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
