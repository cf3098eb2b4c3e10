package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const studentColumns = `id, course_id, first_name, last_name, condition, notes, created_at, updated_at`

// StudentRepository persists the roster of each course.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByCourse returns the roster ordered by last then first name.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE course_id = $1 ORDER BY last_name ASC, first_name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Condition == "" {
		student.Condition = models.ConditionRegular
	}
	now := time.Now().UTC()
	student.CreatedAt, student.UpdatedAt = now, now
	const query = `INSERT INTO students (id, course_id, first_name, last_name, condition, notes, created_at, updated_at)
        VALUES (:id, :course_id, :first_name, :last_name, :condition, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists names, condition and notes.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, condition = :condition, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
