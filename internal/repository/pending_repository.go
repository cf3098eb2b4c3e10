package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// PendingRepository persists students owing subjects from previous years.
type PendingRepository struct {
	db *sqlx.DB
}

// NewPendingRepository constructs a PendingRepository.
func NewPendingRepository(db *sqlx.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

// ListStudents returns the pending students of a school, optionally scoped to a current year.
func (r *PendingRepository) ListStudents(ctx context.Context, schoolID string, currentYear int) ([]models.PendingStudent, error) {
	query := `SELECT id, school_id, full_name, subject, origin_year, current_year, created_at FROM pending_students WHERE school_id = $1`
	args := []interface{}{schoolID}
	if currentYear > 0 {
		query += ` AND current_year = $2`
		args = append(args, currentYear)
	}
	query += ` ORDER BY full_name ASC`
	var out []models.PendingStudent
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list pending students: %w", err)
	}
	return out, nil
}

// FindStudent returns one pending student.
func (r *PendingRepository) FindStudent(ctx context.Context, id string) (*models.PendingStudent, error) {
	const query = `SELECT id, school_id, full_name, subject, origin_year, current_year, created_at FROM pending_students WHERE id = $1`
	var ps models.PendingStudent
	if err := r.db.GetContext(ctx, &ps, query, id); err != nil {
		return nil, fmt.Errorf("find pending student: %w", err)
	}
	return &ps, nil
}

// CreateStudent inserts a pending student.
func (r *PendingRepository) CreateStudent(ctx context.Context, ps *models.PendingStudent) error {
	if ps.ID == "" {
		ps.ID = uuid.NewString()
	}
	ps.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO pending_students (id, school_id, full_name, subject, origin_year, current_year, created_at)
        VALUES (:id, :school_id, :full_name, :subject, :origin_year, :current_year, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ps); err != nil {
		return fmt.Errorf("create pending student: %w", err)
	}
	return nil
}

// DeleteStudent removes a pending student; exams and grades cascade.
func (r *PendingRepository) DeleteStudent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete pending student: %w", err)
	}
	return nil
}

// ListExams returns the exam sittings of the given pending students.
func (r *PendingRepository) ListExams(ctx context.Context, studentIDs []string) ([]models.PendingExam, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, pending_student_id, date, description, created_at
        FROM pending_exams WHERE pending_student_id = ANY($1) ORDER BY date ASC`
	var out []models.PendingExam
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list pending exams: %w", err)
	}
	return out, nil
}

// FindExam returns one pending exam.
func (r *PendingRepository) FindExam(ctx context.Context, id string) (*models.PendingExam, error) {
	const query = `SELECT id, pending_student_id, date, description, created_at FROM pending_exams WHERE id = $1`
	var pe models.PendingExam
	if err := r.db.GetContext(ctx, &pe, query, id); err != nil {
		return nil, fmt.Errorf("find pending exam: %w", err)
	}
	return &pe, nil
}

// CreateExam inserts a pending exam.
func (r *PendingRepository) CreateExam(ctx context.Context, pe *models.PendingExam) error {
	if pe.ID == "" {
		pe.ID = uuid.NewString()
	}
	pe.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO pending_exams (id, pending_student_id, date, description, created_at)
        VALUES (:id, :pending_student_id, :date, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pe); err != nil {
		return fmt.Errorf("create pending exam: %w", err)
	}
	return nil
}

// ListGrades returns the grades of the given pending students.
func (r *PendingRepository) ListGrades(ctx context.Context, studentIDs []string) ([]models.PendingGrade, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, pending_exam_id, pending_student_id, grade, approved, updated_at
        FROM pending_grades WHERE pending_student_id = ANY($1)`
	var out []models.PendingGrade
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list pending grades: %w", err)
	}
	return out, nil
}

// UpsertGrade stores the result of a pending exam.
func (r *PendingRepository) UpsertGrade(ctx context.Context, pg *models.PendingGrade) error {
	if pg.ID == "" {
		pg.ID = uuid.NewString()
	}
	pg.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO pending_grades (id, pending_exam_id, pending_student_id, grade, approved, updated_at)
        VALUES (:id, :pending_exam_id, :pending_student_id, :grade, :approved, :updated_at)
        ON CONFLICT (pending_exam_id, pending_student_id)
        DO UPDATE SET grade = EXCLUDED.grade, approved = EXCLUDED.approved, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pg); err != nil {
		return fmt.Errorf("upsert pending grade: %w", err)
	}
	return nil
}
