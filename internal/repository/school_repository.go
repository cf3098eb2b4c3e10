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

const schoolColumns = `id, owner_id, name, period_scheme, created_at, updated_at`

// SchoolRepository persists schools and their period calendars.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// ListByOwner returns the schools owned by a user ordered by name.
func (r *SchoolRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE owner_id = $1 ORDER BY name ASC`
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query, ownerID); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// FindByID returns a school by id.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &school, nil
}

// Create inserts a school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	school.CreatedAt, school.UpdatedAt = now, now
	const query = `INSERT INTO schools (id, owner_id, name, period_scheme, created_at, updated_at)
        VALUES (:id, :owner_id, :name, :period_scheme, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// Update persists name and period scheme.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schools SET name = :name, period_scheme = :period_scheme, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	return nil
}

// Delete removes a school.
func (r *SchoolRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	return nil
}

// ListPeriods returns the stored periods of a school for one year.
func (r *SchoolRepository) ListPeriods(ctx context.Context, schoolID string, year int) ([]models.SchoolPeriod, error) {
	const query = `SELECT school_id, year, period, starts_on, ends_on FROM school_periods
        WHERE school_id = $1 AND year = $2 ORDER BY period ASC`
	var periods []models.SchoolPeriod
	if err := r.db.SelectContext(ctx, &periods, query, schoolID, year); err != nil {
		return nil, fmt.Errorf("list school periods: %w", err)
	}
	return periods, nil
}

// ReplacePeriods upserts each period and drops the ones no longer present.
// Every statement is an independent write.
func (r *SchoolRepository) ReplacePeriods(ctx context.Context, schoolID string, year int, periods []models.SchoolPeriod) error {
	const upsert = `INSERT INTO school_periods (school_id, year, period, starts_on, ends_on)
        VALUES (:school_id, :year, :period, :starts_on, :ends_on)
        ON CONFLICT (school_id, year, period)
        DO UPDATE SET starts_on = EXCLUDED.starts_on, ends_on = EXCLUDED.ends_on`
	keep := make([]int64, 0, len(periods))
	for i := range periods {
		periods[i].SchoolID = schoolID
		periods[i].Year = year
		if _, err := r.db.NamedExecContext(ctx, upsert, periods[i]); err != nil {
			return fmt.Errorf("upsert school period: %w", err)
		}
		keep = append(keep, int64(periods[i].Period))
	}

	const prune = `DELETE FROM school_periods WHERE school_id = $1 AND year = $2 AND NOT (period = ANY($3))`
	if _, err := r.db.ExecContext(ctx, prune, schoolID, year, pq.Array(keep)); err != nil {
		return fmt.Errorf("prune school periods: %w", err)
	}
	return nil
}
