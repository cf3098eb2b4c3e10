package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
)

type homeworkRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Homework, error)
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	Create(ctx context.Context, hw *models.Homework) error
	Update(ctx context.Context, hw *models.Homework) error
	Delete(ctx context.Context, id string) error
	ListStatuses(ctx context.Context, courseID string) ([]models.HomeworkStatus, error)
	UpsertStatus(ctx context.Context, status *models.HomeworkStatus) error
}

// HomeworkOverview lists the homework of a course with every recorded status.
type HomeworkOverview struct {
	Homeworks []models.Homework       `json:"homeworks"`
	Statuses  []models.HomeworkStatus `json:"statuses"`
}

// HomeworkService manages assignments and their completion statuses.
type HomeworkService struct {
	repo      homeworkRepository
	courses   courseFinder
	schools   schoolFinder
	students  studentFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs a HomeworkService.
func NewHomeworkService(repo homeworkRepository, courses courseFinder, schools schoolFinder, students studentFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{repo: repo, courses: courses, schools: schools, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns the homework of a course with their statuses.
func (s *HomeworkService) List(ctx context.Context, actor Actor, courseID string) (*HomeworkOverview, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	homeworks, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list homework")
	}
	statuses, err := s.repo.ListStatuses(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list homework statuses")
	}
	return &HomeworkOverview{Homeworks: homeworks, Statuses: statuses}, nil
}

// Create assigns homework to a course.
func (s *HomeworkService) Create(ctx context.Context, actor Actor, courseID string, req models.HomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid homework payload")
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
	hw := &models.Homework{CourseID: courseID, Period: req.Period, Date: date, Description: req.Description}
	if err := s.repo.Create(ctx, hw); err != nil {
		return nil, internalError(err, "failed to create homework")
	}
	s.cache.InvalidateCourse(ctx, courseID)
	return hw, nil
}

// Update edits an assignment.
func (s *HomeworkService) Update(ctx context.Context, actor Actor, id string, req models.HomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid homework payload")
	}
	hw, course, err := s.authorizeHomework(ctx, actor, id)
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
	hw.Period = req.Period
	hw.Date = date
	hw.Description = req.Description
	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, internalError(err, "failed to update homework")
	}
	s.cache.InvalidateCourse(ctx, hw.CourseID)
	return hw, nil
}

// Delete removes an assignment and its statuses.
func (s *HomeworkService) Delete(ctx context.Context, actor Actor, id string) error {
	hw, _, err := s.authorizeHomework(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete homework")
	}
	s.cache.InvalidateCourse(ctx, hw.CourseID)
	return nil
}

// SetStatus records the completion status of one student.
func (s *HomeworkService) SetStatus(ctx context.Context, actor Actor, homeworkID, studentID string, req models.HomeworkStatusRequest) (*models.HomeworkStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid homework status payload")
	}
	hw, _, err := s.authorizeHomework(ctx, actor, homeworkID)
	if err != nil {
		return nil, err
	}
	if err := studentInCourse(ctx, s.students, studentID, hw.CourseID); err != nil {
		return nil, err
	}
	status := &models.HomeworkStatus{HomeworkID: hw.ID, StudentID: studentID, Status: req.Status}
	if err := s.repo.UpsertStatus(ctx, status); err != nil {
		return nil, internalError(err, "failed to store homework status")
	}
	s.cache.InvalidateCourse(ctx, hw.CourseID)
	return status, nil
}

func (s *HomeworkService) authorizeHomework(ctx context.Context, actor Actor, id string) (*models.Homework, *models.Course, error) {
	hw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "homework not found", "failed to load homework")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, hw.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return hw, course, nil
}
