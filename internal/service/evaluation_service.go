package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type calendarProvider interface {
	Calendar(ctx context.Context, schoolID string, year int) (evaluation.Calendar, error)
}

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceEntry, error)
}

type homeworkLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Homework, error)
	ListStatuses(ctx context.Context, courseID string) ([]models.HomeworkStatus, error)
}

type sanctionLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Sanction, error)
}

type remediationLister interface {
	ListInstances(ctx context.Context, courseID string) ([]models.RemediationInstance, error)
	ListResults(ctx context.Context, courseID string) ([]models.RemediationResult, error)
}

// EvaluationSources groups the record readers the evaluation needs.
type EvaluationSources struct {
	Courses     courseFinder
	Roster      rosterLister
	Calendars   calendarProvider
	Grades      gradeLister
	Attendance  attendanceLister
	Homework    homeworkLister
	Sanctions   sanctionLister
	Remediation remediationLister
}

// EvaluationService loads a course's records for a year and runs the evaluation engine.
type EvaluationService struct {
	src       EvaluationSources
	engine    evaluation.Evaluator
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cacheTTL  time.Duration
	clockYear func() int
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(src EvaluationSources, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		src:       src,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cacheTTL:  cacheTTL,
		clockYear: func() int { return time.Now().Year() },
	}
}

// EvaluateCourse returns the evaluation of every student of a course. A zero
// year means the course's own academic year.
func (s *EvaluationService) EvaluateCourse(ctx context.Context, actor Actor, courseID string, year int) (*evaluation.CourseEvaluation, error) {
	course, err := authorizeCourse(ctx, s.src.Courses, actor, courseID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, course, year)
}

// EvaluateStudent returns the evaluation of one student together with their course.
func (s *EvaluationService) EvaluateStudent(ctx context.Context, actor Actor, courseID, studentID string, year int) (*evaluation.StudentEvaluation, *models.Course, error) {
	course, err := authorizeCourse(ctx, s.src.Courses, actor, courseID)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.evaluate(ctx, course, year)
	if err != nil {
		return nil, nil, err
	}
	for i := range result.Students {
		if result.Students[i].StudentID == studentID {
			return &result.Students[i], course, nil
		}
	}
	return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in course")
}

func (s *EvaluationService) evaluate(ctx context.Context, course *models.Course, year int) (*evaluation.CourseEvaluation, error) {
	if year == 0 {
		year = course.Year
	}
	if year == 0 {
		year = s.clockYear()
	}
	if year != course.Year {
		return nil, invalidInput("course does not belong to the requested academic year")
	}

	key := EvaluationKey(course.ID, year)
	var cached evaluation.CourseEvaluation
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	start := time.Now()
	cal, err := s.src.Calendars.Calendar(ctx, course.SchoolID, year)
	if err != nil {
		return nil, err
	}
	roster, err := s.src.Roster.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, internalError(err, "failed to load roster")
	}
	records, err := s.loadRecords(ctx, course.ID, cal)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.EvaluateCourse(year, cal, course.ID, roster, records)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidInput) {
			return nil, validationError(err, "course cannot be evaluated for this year")
		}
		return nil, internalError(err, "failed to evaluate course")
	}
	s.metrics.ObserveEvaluation(time.Since(start))

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Debug("evaluation not cached", zap.String("course_id", course.ID), zap.Error(err))
	}
	return &result, nil
}

func (s *EvaluationService) loadRecords(ctx context.Context, courseID string, cal evaluation.Calendar) (evaluation.Records, error) {
	var records evaluation.Records
	var err error

	if records.Grades, err = s.src.Grades.List(ctx, models.GradeFilter{CourseID: courseID}); err != nil {
		return records, internalError(err, "failed to load grades")
	}
	span := cal.YearRange()
	from, to := span.Start, span.End
	if records.Attendance, err = s.src.Attendance.List(ctx, models.AttendanceFilter{CourseID: courseID, DateFrom: &from, DateTo: &to}); err != nil {
		return records, internalError(err, "failed to load attendance")
	}
	if records.Homeworks, err = s.src.Homework.ListByCourse(ctx, courseID); err != nil {
		return records, internalError(err, "failed to load homework")
	}
	if records.HomeworkStatuses, err = s.src.Homework.ListStatuses(ctx, courseID); err != nil {
		return records, internalError(err, "failed to load homework statuses")
	}
	if records.Sanctions, err = s.src.Sanctions.ListByCourse(ctx, courseID); err != nil {
		return records, internalError(err, "failed to load sanctions")
	}
	if records.Remediations, err = s.src.Remediation.ListInstances(ctx, courseID); err != nil {
		return records, internalError(err, "failed to load remediation instances")
	}
	if records.RemediationResults, err = s.src.Remediation.ListResults(ctx, courseID); err != nil {
		return records, internalError(err, "failed to load remediation results")
	}
	return records, nil
}

// ForCourse evaluates a course that the caller already authorized, such as a
// queued export job.
func (s *EvaluationService) ForCourse(ctx context.Context, course *models.Course, year int) (*evaluation.CourseEvaluation, error) {
	return s.evaluate(ctx, course, year)
}
