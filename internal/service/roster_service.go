package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
)

type rosterSchoolRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.School, error)
	FindByID(ctx context.Context, id string) (*models.School, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id string) error
	ListPeriods(ctx context.Context, schoolID string, year int) ([]models.SchoolPeriod, error)
	ReplacePeriods(ctx context.Context, schoolID string, year int, periods []models.SchoolPeriod) error
}

type rosterCourseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type rosterStudentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// RosterService manages schools, their period calendars, courses and students.
type RosterService struct {
	schools   rosterSchoolRepository
	courses   rosterCourseRepository
	students  rosterStudentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(schools rosterSchoolRepository, courses rosterCourseRepository, students rosterStudentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{schools: schools, courses: courses, students: students, cache: cache, validator: validate, logger: logger}
}

// ListSchools returns the schools owned by the actor.
func (s *RosterService) ListSchools(ctx context.Context, actor Actor) ([]models.School, error) {
	schools, err := s.schools.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, internalError(err, "failed to list schools")
	}
	return schools, nil
}

// GetSchool returns one school.
func (s *RosterService) GetSchool(ctx context.Context, actor Actor, id string) (*models.School, error) {
	return authorizeSchool(ctx, s.schools, actor, id)
}

// CreateSchool registers a school owned by the actor.
func (s *RosterService) CreateSchool(ctx context.Context, actor Actor, req models.SchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid school payload")
	}
	school := &models.School{OwnerID: actor.UserID, Name: req.Name, PeriodScheme: req.PeriodScheme}
	if err := s.schools.Create(ctx, school); err != nil {
		return nil, internalError(err, "failed to create school")
	}
	return school, nil
}

// UpdateSchool renames a school or switches its period scheme.
func (s *RosterService) UpdateSchool(ctx context.Context, actor Actor, id string, req models.SchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid school payload")
	}
	school, err := authorizeSchool(ctx, s.schools, actor, id)
	if err != nil {
		return nil, err
	}
	schemeChanged := school.PeriodScheme != req.PeriodScheme
	school.Name = req.Name
	school.PeriodScheme = req.PeriodScheme
	if err := s.schools.Update(ctx, school); err != nil {
		return nil, internalError(err, "failed to update school")
	}
	if schemeChanged {
		s.invalidateSchool(ctx, school.ID)
	}
	return school, nil
}

// DeleteSchool removes a school.
func (s *RosterService) DeleteSchool(ctx context.Context, actor Actor, id string) error {
	if _, err := authorizeSchool(ctx, s.schools, actor, id); err != nil {
		return err
	}
	s.invalidateSchool(ctx, id)
	if err := s.schools.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete school")
	}
	return nil
}

// SetPeriods replaces the period dates of a school for one academic year.
func (s *RosterService) SetPeriods(ctx context.Context, actor Actor, schoolID string, req models.SetPeriodsRequest) ([]models.SchoolPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid periods payload")
	}
	school, err := authorizeSchool(ctx, s.schools, actor, schoolID)
	if err != nil {
		return nil, err
	}

	periods := make([]models.SchoolPeriod, 0, len(req.Periods))
	seen := make(map[int]bool, len(req.Periods))
	for _, in := range req.Periods {
		if seen[in.Period] {
			return nil, invalidInput("duplicate period in payload")
		}
		seen[in.Period] = true
		start, err := parseDate(in.StartsOn, "starts_on")
		if err != nil {
			return nil, err
		}
		end, err := parseDate(in.EndsOn, "ends_on")
		if err != nil {
			return nil, err
		}
		periods = append(periods, models.SchoolPeriod{SchoolID: school.ID, Year: req.Year, Period: in.Period, StartsOn: start, EndsOn: end})
	}
	if _, err := evaluation.NewCalendar(req.Year, school.PeriodScheme, periods); err != nil {
		return nil, validationError(err, "periods do not fit the school scheme")
	}

	if err := s.schools.ReplacePeriods(ctx, school.ID, req.Year, periods); err != nil {
		return nil, internalError(err, "failed to store periods")
	}
	s.invalidateSchool(ctx, school.ID)
	return periods, nil
}

// Calendar returns the evaluation calendar of a school for one year.
func (s *RosterService) Calendar(ctx context.Context, schoolID string, year int) (evaluation.Calendar, error) {
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		return evaluation.Calendar{}, notFoundOr(err, "school not found", "failed to load school")
	}
	stored, err := s.schools.ListPeriods(ctx, schoolID, year)
	if err != nil {
		return evaluation.Calendar{}, internalError(err, "failed to load periods")
	}
	cal, err := evaluation.NewCalendar(year, school.PeriodScheme, stored)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidInput) {
			s.logger.Warn("stored periods rejected, using default split", zap.String("school_id", schoolID), zap.Int("year", year), zap.Error(err))
			return evaluation.DefaultCalendar(year, school.PeriodScheme), nil
		}
		return evaluation.Calendar{}, internalError(err, "failed to build calendar")
	}
	return cal, nil
}

// ListCourses returns the courses of a school, optionally filtered by year.
func (s *RosterService) ListCourses(ctx context.Context, actor Actor, schoolID string, year int) ([]models.Course, error) {
	if _, err := authorizeSchool(ctx, s.schools, actor, schoolID); err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx, models.CourseFilter{SchoolID: schoolID, Year: year})
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	return courses, nil
}

// GetCourse returns one course.
func (s *RosterService) GetCourse(ctx context.Context, actor Actor, id string) (*models.Course, error) {
	return authorizeCourse(ctx, s.courses, actor, id)
}

// CreateCourse adds a course to a school.
func (s *RosterService) CreateCourse(ctx context.Context, actor Actor, schoolID string, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	school, err := authorizeSchool(ctx, s.schools, actor, schoolID)
	if err != nil {
		return nil, err
	}
	course := &models.Course{
		SchoolID: school.ID,
		OwnerID:  school.OwnerID,
		Name:     req.Name,
		Subject:  req.Subject,
		Year:     req.Year,
		Schedule: req.Schedule,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	return course, nil
}

// UpdateCourse edits a course.
func (s *RosterService) UpdateCourse(ctx context.Context, actor Actor, id string, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := authorizeCourse(ctx, s.courses, actor, id)
	if err != nil {
		return nil, err
	}
	course.Name = req.Name
	course.Subject = req.Subject
	course.Year = req.Year
	course.Schedule = req.Schedule
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, internalError(err, "failed to update course")
	}
	s.cache.InvalidateCourse(ctx, course.ID)
	return course, nil
}

// DeleteCourse removes a course.
func (s *RosterService) DeleteCourse(ctx context.Context, actor Actor, id string) error {
	if _, err := authorizeCourse(ctx, s.courses, actor, id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete course")
	}
	s.cache.InvalidateCourse(ctx, id)
	return nil
}

// ListStudents returns the roster of a course.
func (s *RosterService) ListStudents(ctx context.Context, actor Actor, courseID string) ([]models.Student, error) {
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	students, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// CreateStudent enrolls a student in a course.
func (s *RosterService) CreateStudent(ctx context.Context, actor Actor, courseID string, req models.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	student := &models.Student{
		CourseID:  courseID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Condition: req.Condition,
		Notes:     req.Notes,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.cache.InvalidateCourse(ctx, courseID)
	return student, nil
}

// UpdateStudent edits a student; a condition change moves them in or out of evaluation.
func (s *RosterService) UpdateStudent(ctx context.Context, actor Actor, id string, req models.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.authorizeStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	if req.Condition != "" {
		student.Condition = req.Condition
	}
	student.Notes = req.Notes
	if err := s.students.Update(ctx, student); err != nil {
		return nil, internalError(err, "failed to update student")
	}
	s.cache.InvalidateCourse(ctx, student.CourseID)
	return student, nil
}

// DeleteStudent removes a student.
func (s *RosterService) DeleteStudent(ctx context.Context, actor Actor, id string) error {
	student, err := s.authorizeStudent(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete student")
	}
	s.cache.InvalidateCourse(ctx, student.CourseID)
	return nil
}

func (s *RosterService) authorizeStudent(ctx context.Context, actor Actor, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	if _, err := authorizeCourse(ctx, s.courses, actor, student.CourseID); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *RosterService) invalidateSchool(ctx context.Context, schoolID string) {
	if !s.cache.Enabled() {
		return
	}
	courses, err := s.courses.List(ctx, models.CourseFilter{SchoolID: schoolID})
	if err != nil {
		s.logger.Warn("failed to list courses for cache invalidation", zap.String("school_id", schoolID), zap.Error(err))
		return
	}
	for _, c := range courses {
		s.cache.InvalidateCourse(ctx, c.ID)
	}
}
