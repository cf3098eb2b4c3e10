package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const topicLogColumns = `id, course_id, date, topic, activity, notes, created_at, updated_at`

// TopicLogRepository persists the class diary of each course.
type TopicLogRepository struct {
	db *sqlx.DB
}

// NewTopicLogRepository constructs a TopicLogRepository.
func NewTopicLogRepository(db *sqlx.DB) *TopicLogRepository {
	return &TopicLogRepository{db: db}
}

// ListByCourse returns entries ordered by date.
func (r *TopicLogRepository) ListByCourse(ctx context.Context, courseID string) ([]models.TopicLog, error) {
	query := `SELECT ` + topicLogColumns + ` FROM topic_logs WHERE course_id = $1 ORDER BY date ASC`
	var out []models.TopicLog
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("list topic logs: %w", err)
	}
	return out, nil
}

// FindByID returns an entry.
func (r *TopicLogRepository) FindByID(ctx context.Context, id string) (*models.TopicLog, error) {
	query := `SELECT ` + topicLogColumns + ` FROM topic_logs WHERE id = $1`
	var tl models.TopicLog
	if err := r.db.GetContext(ctx, &tl, query, id); err != nil {
		return nil, fmt.Errorf("find topic log: %w", err)
	}
	return &tl, nil
}

// Create inserts an entry.
func (r *TopicLogRepository) Create(ctx context.Context, tl *models.TopicLog) error {
	if tl.ID == "" {
		tl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tl.CreatedAt, tl.UpdatedAt = now, now
	const query = `INSERT INTO topic_logs (id, course_id, date, topic, activity, notes, created_at, updated_at)
        VALUES (:id, :course_id, :date, :topic, :activity, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tl); err != nil {
		return fmt.Errorf("create topic log: %w", err)
	}
	return nil
}

// Update persists the entry fields.
func (r *TopicLogRepository) Update(ctx context.Context, tl *models.TopicLog) error {
	tl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE topic_logs SET date = :date, topic = :topic, activity = :activity, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tl); err != nil {
		return fmt.Errorf("update topic log: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *TopicLogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM topic_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete topic log: %w", err)
	}
	return nil
}
