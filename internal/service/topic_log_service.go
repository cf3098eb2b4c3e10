package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
)

type topicLogRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.TopicLog, error)
	FindByID(ctx context.Context, id string) (*models.TopicLog, error)
	Create(ctx context.Context, tl *models.TopicLog) error
	Update(ctx context.Context, tl *models.TopicLog) error
	Delete(ctx context.Context, id string) error
}

// TopicLogService manages the class diary of a course.
type TopicLogService struct {
	repo      topicLogRepository
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTopicLogService constructs a TopicLogService.
func NewTopicLogService(repo topicLogRepository, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *TopicLogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicLogService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns the diary entries of a course.
func (s *TopicLogService) List(ctx context.Context, actor Actor, courseID string) ([]models.TopicLog, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list topic logs")
	}
	return items, nil
}

// Create adds an entry.
func (s *TopicLogService) Create(ctx context.Context, actor Actor, courseID string, req models.TopicLogRequest) (*models.TopicLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid topic log payload")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	tl := &models.TopicLog{CourseID: courseID, Date: date, Topic: req.Topic, Activity: req.Activity, Notes: req.Notes}
	if err := s.repo.Create(ctx, tl); err != nil {
		return nil, internalError(err, "failed to create topic log")
	}
	return tl, nil
}

// Update edits an entry.
func (s *TopicLogService) Update(ctx context.Context, actor Actor, id string, req models.TopicLogRequest) (*models.TopicLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid topic log payload")
	}
	tl, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	tl.Date = date
	tl.Topic = req.Topic
	tl.Activity = req.Activity
	tl.Notes = req.Notes
	if err := s.repo.Update(ctx, tl); err != nil {
		return nil, internalError(err, "failed to update topic log")
	}
	return tl, nil
}

// Delete removes an entry.
func (s *TopicLogService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete topic log")
	}
	return nil
}

func (s *TopicLogService) authorize(ctx context.Context, actor Actor, id string) (*models.TopicLog, error) {
	tl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "topic log not found", "failed to load topic log")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, tl.CourseID); err != nil {
		return nil, err
	}
	return tl, nil
}
