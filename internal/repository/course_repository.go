package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const courseColumns = `id, school_id, owner_id, name, subject, year, schedule, created_at, updated_at`

// CourseRepository persists courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter ordered by name.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE 1=1`
	var args []interface{}
	if filter.SchoolID != "" {
		query += fmt.Sprintf(" AND school_id = $%d", len(args)+1)
		args = append(args, filter.SchoolID)
	}
	if filter.OwnerID != "" {
		query += fmt.Sprintf(" AND owner_id = $%d", len(args)+1)
		args = append(args, filter.OwnerID)
	}
	if filter.Year > 0 {
		query += fmt.Sprintf(" AND year = $%d", len(args)+1)
		args = append(args, filter.Year)
	}
	query += " ORDER BY name ASC"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	const query = `INSERT INTO courses (id, school_id, owner_id, name, subject, year, schedule, created_at, updated_at)
        VALUES (:id, :school_id, :owner_id, :name, :subject, :year, :schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists the mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, subject = :subject, year = :year, schedule = :schedule, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
