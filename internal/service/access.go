package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) owns(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type schoolFinder interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

// authorizeCourse loads a course and checks the actor owns it.
func authorizeCourse(ctx context.Context, courses courseFinder, actor Actor, courseID string) (*models.Course, error) {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !actor.owns(course.OwnerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another user")
	}
	return course, nil
}

// authorizeSchool loads a school and checks the actor owns it.
func authorizeSchool(ctx context.Context, schools schoolFinder, actor Actor, schoolID string) (*models.School, error) {
	school, err := schools.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	if !actor.owns(school.OwnerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "school belongs to another user")
	}
	return school, nil
}

// notFoundOr maps sql.ErrNoRows to a not-found error and anything else to an internal one.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func invalidInput(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, validationError(err, field+" must use YYYY-MM-DD")
	}
	return t, nil
}

// checkPeriod rejects periods the course's school scheme does not have.
func checkPeriod(ctx context.Context, schools schoolFinder, course *models.Course, period int) error {
	school, err := schools.FindByID(ctx, course.SchoolID)
	if err != nil {
		return notFoundOr(err, "school not found", "failed to load school")
	}
	if period < 1 || period > school.PeriodScheme.PeriodCount() {
		return invalidInput("period is outside the school period scheme")
	}
	return nil
}

// studentInCourse rejects student ids that are not on the course roster.
func studentInCourse(ctx context.Context, students studentFinder, studentID, courseID string) error {
	student, err := students.FindByID(ctx, studentID)
	if err != nil {
		return notFoundOr(err, "student not found", "failed to load student")
	}
	if student.CourseID != courseID {
		return invalidInput("student is not enrolled in this course")
	}
	return nil
}
