package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const assessmentColumns = `id, course_id, period, date, description, kind, weight, created_at, updated_at`

// AssessmentRepository persists gradable columns.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListByCourse returns columns in display order: period, date, description.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE course_id = $1 ORDER BY period ASC, date ASC, description ASC`
	var out []models.Assessment
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}

// FindByID returns an assessment.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	var a models.Assessment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &a, nil
}

// Create inserts an assessment. Two columns may share period, date and
// description; each keeps its own id.
func (r *AssessmentRepository) Create(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	const query = `INSERT INTO assessments (id, course_id, period, date, description, kind, weight, created_at, updated_at)
        VALUES (:id, :course_id, :period, :date, :description, :kind, :weight, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update edits the column; its grades follow through the id.
func (r *AssessmentRepository) Update(ctx context.Context, a *models.Assessment) error {
	a.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessments SET period = :period, date = :date, description = :description, weight = :weight, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	const syncPeriod = `UPDATE grades SET period = $2 WHERE assessment_id = $1 AND period <> $2`
	if _, err := r.db.ExecContext(ctx, syncPeriod, a.ID, a.Period); err != nil {
		return fmt.Errorf("sync grade periods: %w", err)
	}
	return nil
}

// Delete removes the column with its grades, remediation instances and their results in one transaction.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assessment: %w", err)
	}
	statements := []struct {
		name  string
		query string
	}{
		{"remediation results", `DELETE FROM intensification_results WHERE instance_id IN (SELECT id FROM intensification_instances WHERE assessment_id = $1)`},
		{"remediation instances", `DELETE FROM intensification_instances WHERE assessment_id = $1`},
		{"grades", `DELETE FROM grades WHERE assessment_id = $1`},
		{"assessment", `DELETE FROM assessments WHERE id = $1`},
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, id); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("delete %s: %w", stmt.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assessment: %w", err)
	}
	return nil
}
