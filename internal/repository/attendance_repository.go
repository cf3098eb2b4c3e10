package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const attendanceColumns = `id, student_id, course_id, date, present, justification, created_at, updated_at`

// AttendanceRepository persists daily attendance, one row per student and date.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the filter ordered by date.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceEntry, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE course_id = $1`
	args := []interface{}{filter.CourseID}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *filter.DateTo)
	}
	query += " ORDER BY date ASC"
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return entries, nil
}

// FindByID returns an attendance row.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceEntry, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`
	var entry models.AttendanceEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &entry, nil
}

// Upsert inserts or replaces the attendance of a student on a date.
func (r *AttendanceRepository) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, course_id, date, present, justification, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :date, :present, :justification, :created_at, :updated_at)
        ON CONFLICT (student_id, date)
        DO UPDATE SET present = EXCLUDED.present, justification = EXCLUDED.justification, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance row.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}
