package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const gradeColumns = `id, student_id, course_id, period, assessment_id, kind, value, report, display, created_at, updated_at`

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade entries matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades WHERE 1=1`
	var args []interface{}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.AssessmentID != "" {
		query += fmt.Sprintf(" AND assessment_id = $%d", len(args)+1)
		args = append(args, filter.AssessmentID)
	}
	if filter.Period > 0 {
		query += fmt.Sprintf(" AND period = $%d", len(args)+1)
		args = append(args, filter.Period)
	}
	query += " ORDER BY period ASC, created_at ASC"
	var grades []models.GradeEntry
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

func stampGrade(g *models.GradeEntry) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
}

// UpsertForAssessment stores the grade of a student in an assessment column.
func (r *GradeRepository) UpsertForAssessment(ctx context.Context, g *models.GradeEntry) error {
	if g.AssessmentID == nil {
		return fmt.Errorf("upsert grade: assessment id required")
	}
	stampGrade(g)
	const query = `INSERT INTO grades (id, student_id, course_id, period, assessment_id, kind, value, report, display, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :period, :assessment_id, :kind, :value, :report, :display, :created_at, :updated_at)
        ON CONFLICT (student_id, assessment_id)
        DO UPDATE SET value = EXCLUDED.value, report = EXCLUDED.report, display = EXCLUDED.display, period = EXCLUDED.period, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// UpsertFinal stores a FINAL_GRADE or FINAL_REPORT override of a period.
func (r *GradeRepository) UpsertFinal(ctx context.Context, g *models.GradeEntry) error {
	if !g.Kind.IsFinal() {
		return fmt.Errorf("upsert final grade: kind %s is not a period final", g.Kind)
	}
	g.AssessmentID = nil
	stampGrade(g)
	const query = `INSERT INTO grades (id, student_id, course_id, period, assessment_id, kind, value, report, display, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :period, :assessment_id, :kind, :value, :report, :display, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, period, kind) WHERE assessment_id IS NULL
        DO UPDATE SET value = EXCLUDED.value, report = EXCLUDED.report, display = EXCLUDED.display, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("upsert final grade: %w", err)
	}
	return nil
}

// DeleteForAssessment clears the grade of a student in a column.
func (r *GradeRepository) DeleteForAssessment(ctx context.Context, studentID, assessmentID string) error {
	const query = `DELETE FROM grades WHERE student_id = $1 AND assessment_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, assessmentID); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

// DeleteFinal clears a period override so the computed value applies again.
func (r *GradeRepository) DeleteFinal(ctx context.Context, studentID, courseID string, period int, kind models.GradeKind) error {
	const query = `DELETE FROM grades WHERE student_id = $1 AND course_id = $2 AND period = $3 AND kind = $4 AND assessment_id IS NULL`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseID, period, kind); err != nil {
		return fmt.Errorf("delete final grade: %w", err)
	}
	return nil
}
