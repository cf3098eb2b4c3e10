package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
)

func TestStudentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "first_name", "last_name", "condition", "notes", "created_at", "updated_at"}).
		AddRow("s1", "c1", "Ana", "Alvarez", "REGULAR", nil, now, now).
		AddRow("s2", "c1", "Bruno", "Benitez", "CANNOT_ATTEND", "medical leave", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students WHERE course_id = $1 ORDER BY last_name ASC, first_name ASC")).
		WithArgs("c1").
		WillReturnRows(rows)

	students, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Alvarez, Ana", students[0].FullName())
	assert.True(t, students[1].Condition.Excluded())
	require.NotNil(t, students[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDefaultsCondition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs(sqlmock.AnyArg(), "c1", "Ana", "Alvarez", models.ConditionRegular, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{CourseID: "c1", FirstName: "Ana", LastName: "Alvarez"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.ConditionRegular, student.Condition)
	require.NoError(t, mock.ExpectationsWereMet())
}
