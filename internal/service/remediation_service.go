package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
)

type remediationRepository interface {
	ListInstances(ctx context.Context, courseID string) ([]models.RemediationInstance, error)
	FindInstance(ctx context.Context, id string) (*models.RemediationInstance, error)
	CreateInstance(ctx context.Context, inst *models.RemediationInstance) error
	DeleteInstance(ctx context.Context, id string) error
	ListResults(ctx context.Context, courseID string) ([]models.RemediationResult, error)
	UpsertResult(ctx context.Context, res *models.RemediationResult) error
}

type assessmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
}

// RemediationOverview lists the remediation instances of a course and their results.
type RemediationOverview struct {
	Instances []models.RemediationInstance `json:"instances"`
	Results   []models.RemediationResult   `json:"results"`
}

// RemediationService manages re-take instances for failed exams.
type RemediationService struct {
	repo        remediationRepository
	courses     courseFinder
	assessments assessmentFinder
	students    studentFinder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRemediationService constructs a RemediationService.
func NewRemediationService(repo remediationRepository, courses courseFinder, assessments assessmentFinder, students studentFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RemediationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemediationService{repo: repo, courses: courses, assessments: assessments, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns the instances and results of a course.
func (s *RemediationService) List(ctx context.Context, actor Actor, courseID string) (*RemediationOverview, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	instances, err := s.repo.ListInstances(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list remediation instances")
	}
	results, err := s.repo.ListResults(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list remediation results")
	}
	return &RemediationOverview{Instances: instances, Results: results}, nil
}

// Create opens a remediation instance for an exam column of the course.
func (s *RemediationService) Create(ctx context.Context, actor Actor, courseID string, req models.RemediationRequest) (*models.RemediationInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid remediation payload")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID)
	if err != nil {
		return nil, notFoundOr(err, "assessment not found", "failed to load assessment")
	}
	if assessment.CourseID != courseID {
		return nil, invalidInput("assessment belongs to another course")
	}
	if assessment.Kind != models.GradeKindExam {
		return nil, invalidInput("remediation applies to exams only")
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	if date.Before(assessment.Date) {
		return nil, invalidInput("remediation cannot precede the exam")
	}
	inst := &models.RemediationInstance{CourseID: courseID, AssessmentID: assessment.ID, Date: date, Description: req.Description}
	if err := s.repo.CreateInstance(ctx, inst); err != nil {
		return nil, internalError(err, "failed to create remediation instance")
	}
	s.cache.InvalidateCourse(ctx, courseID)
	return inst, nil
}

// Delete removes an instance and its results.
func (s *RemediationService) Delete(ctx context.Context, actor Actor, id string) error {
	inst, err := s.authorizeInstance(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteInstance(ctx, id); err != nil {
		return internalError(err, "failed to delete remediation instance")
	}
	s.cache.InvalidateCourse(ctx, inst.CourseID)
	return nil
}

// SetResult stores the outcome of a student in an instance. Grades are clamped
// to [0,10]; when approval is omitted it follows the passing grade. A stored
// result always counts as an attempt.
func (s *RemediationService) SetResult(ctx context.Context, actor Actor, instanceID, studentID string, req models.RemediationResultRequest) (*models.RemediationResult, error) {
	inst, err := s.authorizeInstance(ctx, actor, instanceID)
	if err != nil {
		return nil, err
	}
	if err := studentInCourse(ctx, s.students, studentID, inst.CourseID); err != nil {
		return nil, err
	}
	grade, approved, err := attemptOutcome(req.Grade, req.Approved)
	if err != nil {
		return nil, err
	}
	res := &models.RemediationResult{InstanceID: inst.ID, StudentID: studentID, Grade: grade, Approved: approved}
	if err := s.repo.UpsertResult(ctx, res); err != nil {
		return nil, internalError(err, "failed to store remediation result")
	}
	s.cache.InvalidateCourse(ctx, inst.CourseID)
	return res, nil
}

func (s *RemediationService) authorizeInstance(ctx context.Context, actor Actor, id string) (*models.RemediationInstance, error) {
	inst, err := s.repo.FindInstance(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "remediation instance not found", "failed to load remediation instance")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, inst.CourseID); err != nil {
		return nil, err
	}
	return inst, nil
}

// attemptOutcome clamps a re-take grade and resolves its approval. A request
// carrying neither a grade nor an explicit approval records nothing.
func attemptOutcome(raw *float64, explicit *bool) (*float64, bool, error) {
	if raw == nil && explicit == nil {
		return nil, false, invalidInput("grade or approved is required")
	}
	var grade *float64
	if raw != nil {
		v := evaluation.ClampGrade(*raw)
		grade = &v
	}
	approved := evaluation.ApprovedByGrade(grade)
	if explicit != nil {
		approved = *explicit
	}
	return grade, approved, nil
}
