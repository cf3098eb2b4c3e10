package service

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/repository"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	ListByCreator(ctx context.Context, userID string, limit int) ([]models.ReportJob, error)
	Update(ctx context.Context, id string, upd repository.ReportJobUpdate) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error)
}

// ReportServiceConfig governs queue recovery and cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      io.ReadSeekCloser
	Filename  string
	Format    models.ReportFormat
	Size      int64
	ExpiresAt time.Time
}

// ReportService orchestrates report job lifecycle management.
type ReportService struct {
	repo     reportJobStore
	courses  courseFinder
	queue    jobDispatcher
	exporter *ExportService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, courses courseFinder, queue jobDispatcher, exporter *ExportService, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		repo:     repo,
		courses:  courses,
		queue:    queue,
		exporter: exporter,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateJob validates the request, persists the job and enqueues processing.
func (s *ReportService) CreateJob(ctx context.Context, actor Actor, req models.CreateReportRequest) (*models.ReportJob, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err, "invalid report request")
	}
	if !req.Type.Valid() {
		return nil, invalidInput("unsupported report type")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, req.CourseID)
	if err != nil {
		return nil, err
	}
	year := req.Year
	if year == 0 {
		year = course.Year
	}

	job := &models.ReportJob{
		Type:      req.Type,
		Params:    models.ReportJobParams{CourseID: course.ID, Year: year, Period: req.Period, Format: req.Format},
		Status:    models.ReportStatusQueued,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, internalError(err, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: string(job.Type)}); err != nil {
		failed := models.ReportStatusFailed
		progress := 100
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		_ = s.repo.Update(ctx, job.ID, repository.ReportJobUpdate{
			Status:       &failed,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, internalError(err, "failed to enqueue report job")
	}
	return job, nil
}

// GetStatus returns a job visible to the actor.
func (s *ReportService) GetStatus(ctx context.Context, actor Actor, id string) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "report job not found", "failed to load report job")
	}
	if !actor.owns(job.CreatedBy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report job belongs to another user")
	}
	return job, nil
}

// ListJobs returns the actor's most recent jobs.
func (s *ReportService) ListJobs(ctx context.Context, actor Actor, limit int) ([]models.ReportJob, error) {
	jobs, err := s.repo.ListByCreator(ctx, actor.UserID, limit)
	if err != nil {
		return nil, internalError(err, "failed to list report jobs")
	}
	return jobs, nil
}

// ResolveDownload validates a token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	decoded, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.FindByID(ctx, decoded.JobID)
	if err != nil {
		return nil, notFoundOr(err, "report job not found", "failed to load report job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, info, err := s.exporter.Open(decoded.Path)
	if err != nil {
		return nil, internalError(err, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  path.Base(decoded.Path),
		Format:    job.Params.Format,
		Size:      info.Size(),
		ExpiresAt: decoded.ExpiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) int {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued report jobs", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue pending job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes the files of jobs finished before the result TTL.
func (s *ReportService) CleanupExpired(ctx context.Context) int {
	const batch = 100
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	removed := 0
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
	if err != nil {
		s.logger.Warn("cleanup list failed", zap.Error(err))
		return 0
	}
	for _, job := range expired {
		if job.ResultURL == nil {
			continue
		}
		token := extractToken(*job.ResultURL)
		if token == "" {
			continue
		}
		decoded, err := s.exporter.ParseToken(token, true)
		if err != nil {
			continue
		}
		if err := s.exporter.Delete(decoded.Path); err != nil {
			s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		removed++
	}
	swept, err := s.exporter.Sweep(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
	return removed + len(swept)
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReportWorker bridges queue jobs to the ExportService.
type ReportWorker struct {
	repo     reportJobStore
	exporter exportGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo reportJobStore, exporter exportGenerator, metrics *MetricsService, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger}
}

// Handle processes a queue job. Returned errors are retried by the queue.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.FindByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.ReportJobUpdate{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.ReportJobUpdate{ErrorMessage: &msg}); updateErr != nil {
			w.logger.Warn("failed to record job error", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ReportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.ReportJobUpdate{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.RecordReportJob(string(record.Type), string(finished))
	return nil
}

// DeadLetter marks a job that exhausted its retries as failed.
func (w *ReportWorker) DeadLetter(ctx context.Context, job jobs.Job, cause error) {
	failed := models.ReportStatusFailed
	progress := 100
	msg := cause.Error()
	now := time.Now().UTC()
	if err := w.repo.Update(ctx, job.ID, repository.ReportJobUpdate{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	w.metrics.RecordReportJob(job.Kind, string(failed))
}
