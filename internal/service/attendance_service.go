package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceEntry, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceEntry, error)
	Upsert(ctx context.Context, entry *models.AttendanceEntry) error
	Delete(ctx context.Context, id string) error
}

type rosterLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
}

// AttendanceService records daily attendance.
type AttendanceService struct {
	repo      attendanceRepository
	courses   courseFinder
	roster    rosterLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, courses courseFinder, roster rosterLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, courses: courses, roster: roster, cache: cache, validator: validate, logger: logger}
}

// List returns the attendance of a course between optional inclusive dates.
func (s *AttendanceService) List(ctx context.Context, actor Actor, courseID, from, to string) ([]models.AttendanceEntry, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	filter := models.AttendanceFilter{CourseID: courseID}
	if from != "" {
		d, err := parseDate(from, "from")
		if err != nil {
			return nil, err
		}
		filter.DateFrom = &d
	}
	if to != "" {
		d, err := parseDate(to, "to")
		if err != nil {
			return nil, err
		}
		filter.DateTo = &d
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, invalidInput("to must not be before from")
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list attendance")
	}
	return entries, nil
}

// Record stores one class day for many students. Each mark is written on its
// own; students outside the roster and failed writes are reported back.
func (s *AttendanceService) Record(ctx context.Context, actor Actor, courseID string, req models.RecordAttendanceRequest) (*models.AttendanceBulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	students, err := s.roster.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to load roster")
	}
	enrolled := make(map[string]bool, len(students))
	for _, st := range students {
		enrolled[st.ID] = true
	}

	result := &models.AttendanceBulkResult{}
	for _, mark := range req.Marks {
		if !enrolled[mark.StudentID] {
			result.Failed = append(result.Failed, models.AttendanceBulkConflict{StudentID: mark.StudentID, Reason: "student is not enrolled in this course"})
			continue
		}
		justification := mark.Justification
		if mark.Present {
			justification = nil
		}
		entry := &models.AttendanceEntry{
			StudentID:     mark.StudentID,
			CourseID:      courseID,
			Date:          date,
			Present:       mark.Present,
			Justification: justification,
		}
		if err := s.repo.Upsert(ctx, entry); err != nil {
			s.logger.Warn("attendance upsert failed", zap.String("student_id", mark.StudentID), zap.Error(err))
			result.Failed = append(result.Failed, models.AttendanceBulkConflict{StudentID: mark.StudentID, Reason: "failed to store attendance"})
			continue
		}
		result.Saved++
	}
	if result.Saved > 0 {
		s.cache.InvalidateCourse(ctx, courseID)
	}
	return result, nil
}

// Delete removes one attendance row.
func (s *AttendanceService) Delete(ctx context.Context, actor Actor, id string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "attendance entry not found", "failed to load attendance")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, entry.CourseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete attendance")
	}
	s.cache.InvalidateCourse(ctx, entry.CourseID)
	return nil
}
