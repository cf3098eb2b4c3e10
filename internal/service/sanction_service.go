package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
)

type sanctionRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Sanction, error)
	FindByID(ctx context.Context, id string) (*models.Sanction, error)
	Create(ctx context.Context, s *models.Sanction) error
	Delete(ctx context.Context, id string) error
}

// SanctionService records disciplinary sanctions.
type SanctionService struct {
	repo      sanctionRepository
	courses   courseFinder
	students  studentFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSanctionService constructs a SanctionService.
func NewSanctionService(repo sanctionRepository, courses courseFinder, students studentFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SanctionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SanctionService{repo: repo, courses: courses, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns the sanctions of a course.
func (s *SanctionService) List(ctx context.Context, actor Actor, courseID string) ([]models.Sanction, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list sanctions")
	}
	return items, nil
}

// Create records a sanction for a student of the course.
func (s *SanctionService) Create(ctx context.Context, actor Actor, courseID string, req models.SanctionRequest) (*models.Sanction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid sanction payload")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	if err := studentInCourse(ctx, s.students, req.StudentID, courseID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	sanction := &models.Sanction{StudentID: req.StudentID, CourseID: courseID, Date: date, Reason: req.Reason}
	if err := s.repo.Create(ctx, sanction); err != nil {
		return nil, internalError(err, "failed to create sanction")
	}
	s.cache.InvalidateCourse(ctx, courseID)
	return sanction, nil
}

// Delete removes a sanction.
func (s *SanctionService) Delete(ctx context.Context, actor Actor, id string) error {
	sanction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "sanction not found", "failed to load sanction")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, sanction.CourseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete sanction")
	}
	s.cache.InvalidateCourse(ctx, sanction.CourseID)
	return nil
}
