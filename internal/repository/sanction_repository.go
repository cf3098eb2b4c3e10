package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// SanctionRepository persists disciplinary records.
type SanctionRepository struct {
	db *sqlx.DB
}

// NewSanctionRepository constructs a SanctionRepository.
func NewSanctionRepository(db *sqlx.DB) *SanctionRepository {
	return &SanctionRepository{db: db}
}

// ListByCourse returns the sanctions of a course, newest first.
func (r *SanctionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Sanction, error) {
	const query = `SELECT id, student_id, course_id, date, reason, created_at FROM sanctions WHERE course_id = $1 ORDER BY date DESC`
	var out []models.Sanction
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list sanctions: %w", err)
	}
	return out, nil
}

// FindByID returns a sanction.
func (r *SanctionRepository) FindByID(ctx context.Context, id string) (*models.Sanction, error) {
	const query = `SELECT id, student_id, course_id, date, reason, created_at FROM sanctions WHERE id = $1`
	var s models.Sanction
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, fmt.Errorf("find sanction: %w", err)
	}
	return &s, nil
}

// Create inserts a sanction.
func (r *SanctionRepository) Create(ctx context.Context, s *models.Sanction) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO sanctions (id, student_id, course_id, date, reason, created_at)
        VALUES (:id, :student_id, :course_id, :date, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create sanction: %w", err)
	}
	return nil
}

// Delete removes a sanction.
func (r *SanctionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sanctions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sanction: %w", err)
	}
	return nil
}
