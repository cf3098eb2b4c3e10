package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
)

type assessmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, a *models.Assessment) error
	Update(ctx context.Context, a *models.Assessment) error
	Delete(ctx context.Context, id string) error
}

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error)
	UpsertForAssessment(ctx context.Context, g *models.GradeEntry) error
	UpsertFinal(ctx context.Context, g *models.GradeEntry) error
	DeleteForAssessment(ctx context.Context, studentID, assessmentID string) error
	DeleteFinal(ctx context.Context, studentID, courseID string, period int, kind models.GradeKind) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// GradeService manages assessment columns, grade entry and period overrides.
type GradeService struct {
	assessments assessmentRepository
	grades      gradeRepository
	courses     courseFinder
	schools     schoolFinder
	students    studentFinder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(assessments assessmentRepository, grades gradeRepository, courses courseFinder, schools schoolFinder, students studentFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		assessments: assessments,
		grades:      grades,
		courses:     courses,
		schools:     schools,
		students:    students,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// ListAssessments returns the columns of a course in display order.
func (s *GradeService) ListAssessments(ctx context.Context, actor Actor, courseID string) ([]models.Assessment, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	items, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list assessments")
	}
	return items, nil
}

// CreateAssessment adds a gradable column to a course.
func (s *GradeService) CreateAssessment(ctx context.Context, actor Actor, courseID string, req models.AssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assessment payload")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, courseID)
	if err != nil {
		return nil, err
	}
	if err := checkPeriod(ctx, s.schools, course, req.Period); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	a := &models.Assessment{
		CourseID:    courseID,
		Period:      req.Period,
		Date:        date,
		Description: req.Description,
		Kind:        req.Kind,
		Weight:      req.Weight,
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		return nil, internalError(err, "failed to create assessment")
	}
	return a, nil
}

// UpdateAssessment edits the period, date, description or weight of a column.
// The kind is fixed once grades may have been typed against it.
func (s *GradeService) UpdateAssessment(ctx context.Context, actor Actor, id string, req models.AssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assessment payload")
	}
	a, course, err := s.authorizeAssessment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Kind != a.Kind {
		return nil, invalidInput("assessment kind cannot change")
	}
	if err := checkPeriod(ctx, s.schools, course, req.Period); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	a.Period = req.Period
	a.Date = date
	a.Description = req.Description
	a.Weight = req.Weight
	if err := s.assessments.Update(ctx, a); err != nil {
		return nil, internalError(err, "failed to update assessment")
	}
	s.cache.InvalidateCourse(ctx, a.CourseID)
	return a, nil
}

// DeleteAssessment removes a column with its grades and remediation instances.
func (s *GradeService) DeleteAssessment(ctx context.Context, actor Actor, id string) error {
	a, _, err := s.authorizeAssessment(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.assessments.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete assessment")
	}
	s.cache.InvalidateCourse(ctx, a.CourseID)
	return nil
}

// ListGrades returns the grade entries of a course, optionally for one period.
func (s *GradeService) ListGrades(ctx context.Context, actor Actor, courseID string, period int) ([]models.GradeEntry, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{CourseID: courseID, Period: period})
	if err != nil {
		return nil, internalError(err, "failed to list grades")
	}
	return grades, nil
}

// EnterGrade stores the raw grade typed for a student in a column. Input that
// does not parse for the column kind is ignored and reported back; blank input
// clears the stored grade.
func (s *GradeService) EnterGrade(ctx context.Context, actor Actor, assessmentID, studentID string, req models.EnterGradeRequest) (*models.GradeWriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	a, _, err := s.authorizeAssessment(ctx, actor, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStudent(ctx, studentID, a.CourseID); err != nil {
		return nil, err
	}

	parsed, err := evaluation.ParseGrade(req.Raw, a.Kind)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidInput) {
			s.logger.Debug("ignoring unparseable grade", zap.String("assessment_id", a.ID), zap.String("student_id", studentID), zap.String("raw", req.Raw))
			return &models.GradeWriteResult{Ignored: true}, nil
		}
		return nil, internalError(err, "failed to parse grade")
	}

	if parsed.Empty() {
		if err := s.grades.DeleteForAssessment(ctx, studentID, a.ID); err != nil {
			return nil, internalError(err, "failed to clear grade")
		}
		s.cache.InvalidateCourse(ctx, a.CourseID)
		return &models.GradeWriteResult{Cleared: true}, nil
	}

	entry := &models.GradeEntry{
		StudentID:    studentID,
		CourseID:     a.CourseID,
		Period:       a.Period,
		AssessmentID: &a.ID,
		Kind:         a.Kind,
		Value:        parsed.Value,
		Report:       parsed.Report,
		Display:      &parsed.Display,
	}
	if err := s.grades.UpsertForAssessment(ctx, entry); err != nil {
		return nil, internalError(err, "failed to store grade")
	}
	s.cache.InvalidateCourse(ctx, a.CourseID)
	return &models.GradeWriteResult{Entry: entry}, nil
}

// SetPeriodFinal saves the manual period grade or report of a student. The
// override wins over the computed value until it is cleared with blank input.
func (s *GradeService) SetPeriodFinal(ctx context.Context, actor Actor, courseID, studentID string, req models.PeriodFinalRequest) (*models.GradeWriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid period final payload")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, courseID)
	if err != nil {
		return nil, err
	}
	if err := checkPeriod(ctx, s.schools, course, req.Period); err != nil {
		return nil, err
	}
	if err := s.checkStudent(ctx, studentID, courseID); err != nil {
		return nil, err
	}

	parsed, err := evaluation.ParseGrade(req.Raw, req.Kind)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidInput) {
			return &models.GradeWriteResult{Ignored: true}, nil
		}
		return nil, internalError(err, "failed to parse period final")
	}

	if parsed.Empty() {
		if err := s.grades.DeleteFinal(ctx, studentID, courseID, req.Period, req.Kind); err != nil {
			return nil, internalError(err, "failed to clear period final")
		}
		s.cache.InvalidateCourse(ctx, courseID)
		return &models.GradeWriteResult{Cleared: true}, nil
	}

	entry := &models.GradeEntry{
		StudentID: studentID,
		CourseID:  courseID,
		Period:    req.Period,
		Kind:      req.Kind,
		Value:     parsed.Value,
		Report:    parsed.Report,
		Display:   &parsed.Display,
	}
	if err := s.grades.UpsertFinal(ctx, entry); err != nil {
		return nil, internalError(err, "failed to store period final")
	}
	s.cache.InvalidateCourse(ctx, courseID)
	return &models.GradeWriteResult{Entry: entry}, nil
}

func (s *GradeService) authorizeAssessment(ctx context.Context, actor Actor, id string) (*models.Assessment, *models.Course, error) {
	a, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "assessment not found", "failed to load assessment")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, a.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return a, course, nil
}

func (s *GradeService) checkStudent(ctx context.Context, studentID, courseID string) error {
	return studentInCourse(ctx, s.students, studentID, courseID)
}
