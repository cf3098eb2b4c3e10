package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type rosterFixture struct {
	svc      *RosterService
	schools  *fakeSchools
	courses  *fakeCourses
	students *fakeStudents
	cache    *fakeCacheRepo
}

func newRosterFixture() rosterFixture {
	schools := newFakeSchools(models.School{ID: "s1", OwnerID: owner.UserID, Name: "North High", PeriodScheme: models.PeriodSchemeTrimester})
	courses := newFakeCourses(models.Course{ID: "c1", SchoolID: "s1", OwnerID: owner.UserID, Name: "3A", Subject: "History", Year: 2024})
	students := newFakeStudents(models.Student{ID: "st1", CourseID: "c1", FirstName: "Ana", LastName: "Lopez", Condition: models.ConditionRegular})
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	return rosterFixture{
		svc:      NewRosterService(schools, courses, students, cache, nil, nil),
		schools:  schools,
		courses:  courses,
		students: students,
		cache:    cacheRepo,
	}
}

func TestRosterServiceCreateSchoolSetsOwner(t *testing.T) {
	f := newRosterFixture()
	school, err := f.svc.CreateSchool(context.Background(), stranger, models.SchoolRequest{Name: "South", PeriodScheme: models.PeriodSchemeBimester})
	require.NoError(t, err)
	assert.Equal(t, stranger.UserID, school.OwnerID)

	list, err := f.svc.ListSchools(context.Background(), stranger)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "South", list[0].Name)
}

func TestRosterServiceOwnership(t *testing.T) {
	f := newRosterFixture()

	_, err := f.svc.GetSchool(context.Background(), stranger, "s1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.GetCourse(context.Background(), stranger, "c1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	course, err := f.svc.GetCourse(context.Background(), admin, "c1")
	require.NoError(t, err)
	assert.Equal(t, "3A", course.Name)

	_, err = f.svc.GetCourse(context.Background(), owner, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRosterServiceCreateCourseInheritsSchoolOwner(t *testing.T) {
	f := newRosterFixture()
	course, err := f.svc.CreateCourse(context.Background(), admin, "s1", models.CourseRequest{Name: "4B", Subject: "Geography", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, course.OwnerID)
	assert.Equal(t, "s1", course.SchoolID)
}

func TestRosterServiceSetPeriods(t *testing.T) {
	f := newRosterFixture()
	req := models.SetPeriodsRequest{Year: 2024, Periods: []models.PeriodRangeInput{
		{Period: 1, StartsOn: "2024-03-01", EndsOn: "2024-05-31"},
		{Period: 2, StartsOn: "2024-06-01", EndsOn: "2024-08-31"},
		{Period: 3, StartsOn: "2024-09-01", EndsOn: "2024-12-15"},
	}}
	periods, err := f.svc.SetPeriods(context.Background(), owner, "s1", req)
	require.NoError(t, err)
	assert.Len(t, periods, 3)
	assert.Len(t, f.schools.periods["s1|2024"], 3)

	cal, err := f.svc.Calendar(context.Background(), "s1", 2024)
	require.NoError(t, err)
	first, ok := cal.Period(1)
	require.True(t, ok)
	assert.Equal(t, day("2024-03-01"), first.Start)
}

func TestRosterServiceSetPeriodsRejectsDuplicates(t *testing.T) {
	f := newRosterFixture()
	req := models.SetPeriodsRequest{Year: 2024, Periods: []models.PeriodRangeInput{
		{Period: 1, StartsOn: "2024-03-01", EndsOn: "2024-05-31"},
		{Period: 1, StartsOn: "2024-06-01", EndsOn: "2024-08-31"},
	}}
	_, err := f.svc.SetPeriods(context.Background(), owner, "s1", req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, f.schools.periods)
}

func TestRosterServiceCalendarFallsBackToDefault(t *testing.T) {
	f := newRosterFixture()
	f.schools.periods["s1|2024"] = []models.SchoolPeriod{
		{SchoolID: "s1", Year: 2024, Period: 1, StartsOn: day("2024-06-01"), EndsOn: day("2024-03-01")},
	}
	cal, err := f.svc.Calendar(context.Background(), "s1", 2024)
	require.NoError(t, err)
	_, ok := cal.Period(3)
	assert.True(t, ok)
}

func TestRosterServiceStudentWritesInvalidateCourse(t *testing.T) {
	f := newRosterFixture()
	require.NoError(t, f.cache.Set(context.Background(), EvaluationKey("c1", 2024), map[string]int{"x": 1}, 0))

	student, err := f.svc.CreateStudent(context.Background(), owner, "c1", models.StudentRequest{FirstName: "Bruno", Condition: models.ConditionRepeating})
	require.NoError(t, err)
	assert.Equal(t, models.ConditionRepeating, student.Condition)
	assert.False(t, f.cache.has(EvaluationKey("c1", 2024)))
	assert.Contains(t, f.cache.deletes, "evaluation:c1:*")

	updated, err := f.svc.UpdateStudent(context.Background(), owner, student.ID, models.StudentRequest{FirstName: "Bruno", LastName: "Diaz"})
	require.NoError(t, err)
	assert.Equal(t, models.ConditionRepeating, updated.Condition)
	assert.Equal(t, "Diaz, Bruno", updated.FullName())

	_, err = f.svc.UpdateStudent(context.Background(), stranger, student.ID, models.StudentRequest{FirstName: "X"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, f.svc.DeleteStudent(context.Background(), owner, student.ID))
	_, ok := f.students.items[student.ID]
	assert.False(t, ok)
}

func TestRosterServiceValidation(t *testing.T) {
	f := newRosterFixture()
	_, err := f.svc.CreateCourse(context.Background(), owner, "s1", models.CourseRequest{Name: "", Subject: "Art", Year: 2024})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.CreateStudent(context.Background(), owner, "c1", models.StudentRequest{FirstName: "Eva", Condition: "ABSENT"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
