package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const homeworkColumns = `id, course_id, period, date, description, created_at, updated_at`

// HomeworkRepository persists homework assignments and completion statuses.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// ListByCourse returns the homework of a course ordered by date.
func (r *HomeworkRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Homework, error) {
	query := `SELECT ` + homeworkColumns + ` FROM homeworks WHERE course_id = $1 ORDER BY date ASC`
	var out []models.Homework
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list homeworks: %w", err)
	}
	return out, nil
}

// FindByID returns a homework assignment.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	query := `SELECT ` + homeworkColumns + ` FROM homeworks WHERE id = $1`
	var hw models.Homework
	if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
		return nil, fmt.Errorf("find homework: %w", err)
	}
	return &hw, nil
}

// Create inserts a homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hw.CreatedAt, hw.UpdatedAt = now, now
	const query = `INSERT INTO homeworks (id, course_id, period, date, description, created_at, updated_at)
        VALUES (:id, :course_id, :period, :date, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Update persists period, date and description.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	const query = `UPDATE homeworks SET period = :period, date = :date, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return nil
}

// Delete removes a homework; statuses cascade through the foreign key.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM homeworks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

// ListStatuses returns every completion status of a course's homework.
func (r *HomeworkRepository) ListStatuses(ctx context.Context, courseID string) ([]models.HomeworkStatus, error) {
	const query = `SELECT hs.id, hs.homework_id, hs.student_id, hs.status, hs.updated_at
        FROM homework_status hs
        JOIN homeworks h ON h.id = hs.homework_id
        WHERE h.course_id = $1`
	var out []models.HomeworkStatus
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list homework statuses: %w", err)
	}
	return out, nil
}

// UpsertStatus sets the completion status of one (homework, student) pair.
func (r *HomeworkRepository) UpsertStatus(ctx context.Context, status *models.HomeworkStatus) error {
	if status.ID == "" {
		status.ID = uuid.NewString()
	}
	status.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO homework_status (id, homework_id, student_id, status, updated_at)
        VALUES (:id, :homework_id, :student_id, :status, :updated_at)
        ON CONFLICT (homework_id, student_id)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("upsert homework status: %w", err)
	}
	return nil
}
