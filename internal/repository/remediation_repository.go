package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// RemediationRepository persists intensification instances and results.
type RemediationRepository struct {
	db *sqlx.DB
}

// NewRemediationRepository constructs a RemediationRepository.
func NewRemediationRepository(db *sqlx.DB) *RemediationRepository {
	return &RemediationRepository{db: db}
}

// ListInstances returns the instances of a course ordered chronologically.
func (r *RemediationRepository) ListInstances(ctx context.Context, courseID string) ([]models.RemediationInstance, error) {
	const query = `SELECT id, course_id, assessment_id, date, description, created_at
        FROM intensification_instances WHERE course_id = $1 ORDER BY date ASC, created_at ASC`
	var out []models.RemediationInstance
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list remediation instances: %w", err)
	}
	return out, nil
}

// FindInstance returns one instance.
func (r *RemediationRepository) FindInstance(ctx context.Context, id string) (*models.RemediationInstance, error) {
	const query = `SELECT id, course_id, assessment_id, date, description, created_at FROM intensification_instances WHERE id = $1`
	var inst models.RemediationInstance
	if err := r.db.GetContext(ctx, &inst, query, id); err != nil {
		return nil, fmt.Errorf("find remediation instance: %w", err)
	}
	return &inst, nil
}

// CreateInstance inserts an instance.
func (r *RemediationRepository) CreateInstance(ctx context.Context, inst *models.RemediationInstance) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	inst.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO intensification_instances (id, course_id, assessment_id, date, description, created_at)
        VALUES (:id, :course_id, :assessment_id, :date, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inst); err != nil {
		return fmt.Errorf("create remediation instance: %w", err)
	}
	return nil
}

// DeleteInstance removes an instance; results cascade through the foreign key.
func (r *RemediationRepository) DeleteInstance(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM intensification_instances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete remediation instance: %w", err)
	}
	return nil
}

// ListResults returns every result recorded in the course's instances.
func (r *RemediationRepository) ListResults(ctx context.Context, courseID string) ([]models.RemediationResult, error) {
	const query = `SELECT rr.id, rr.instance_id, rr.student_id, rr.grade, rr.approved, rr.updated_at
        FROM intensification_results rr
        JOIN intensification_instances ri ON ri.id = rr.instance_id
        WHERE ri.course_id = $1`
	var out []models.RemediationResult
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list remediation results: %w", err)
	}
	return out, nil
}

// UpsertResult stores the result of one student in one instance.
func (r *RemediationRepository) UpsertResult(ctx context.Context, res *models.RemediationResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO intensification_results (id, instance_id, student_id, grade, approved, updated_at)
        VALUES (:id, :instance_id, :student_id, :grade, :approved, :updated_at)
        ON CONFLICT (instance_id, student_id)
        DO UPDATE SET grade = EXCLUDED.grade, approved = EXCLUDED.approved, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("upsert remediation result: %w", err)
	}
	return nil
}
