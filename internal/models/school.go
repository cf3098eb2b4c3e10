package models

import "time"

// PeriodScheme describes how a school splits the academic year.
type PeriodScheme string

const (
	// PeriodSchemeBimester splits the year in two periods.
	PeriodSchemeBimester PeriodScheme = "BIMESTER"
	// PeriodSchemeTrimester splits the year in three periods.
	PeriodSchemeTrimester PeriodScheme = "TRIMESTER"
)

// PeriodCount returns the number of grading periods for the scheme.
func (s PeriodScheme) PeriodCount() int {
	switch s {
	case PeriodSchemeBimester:
		return 2
	case PeriodSchemeTrimester:
		return 3
	default:
		return 0
	}
}

// Valid reports whether the scheme is supported.
func (s PeriodScheme) Valid() bool {
	return s.PeriodCount() > 0
}

// School groups the courses a teacher runs in one institution.
type School struct {
	ID           string       `db:"id" json:"id"`
	OwnerID      string       `db:"owner_id" json:"owner_id"`
	Name         string       `db:"name" json:"name"`
	PeriodScheme PeriodScheme `db:"period_scheme" json:"period_scheme"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// SchoolPeriod is the date range of one grading period in a given year.
type SchoolPeriod struct {
	SchoolID string    `db:"school_id" json:"school_id"`
	Year     int       `db:"year" json:"year"`
	Period   int       `db:"period" json:"period"`
	StartsOn time.Time `db:"starts_on" json:"starts_on"`
	EndsOn   time.Time `db:"ends_on" json:"ends_on"`
}

// SchoolRequest is the create/update payload of a school.
type SchoolRequest struct {
	Name         string       `json:"name" validate:"required,max=160"`
	PeriodScheme PeriodScheme `json:"period_scheme" validate:"required,oneof=BIMESTER TRIMESTER"`
}

// PeriodRangeInput is one period boundary in a calendar payload. Dates use YYYY-MM-DD.
type PeriodRangeInput struct {
	Period   int    `json:"period" validate:"required,min=1,max=3"`
	StartsOn string `json:"starts_on" validate:"required,datetime=2006-01-02"`
	EndsOn   string `json:"ends_on" validate:"required,datetime=2006-01-02"`
}

// SetPeriodsRequest replaces the period calendar of a school for one year.
type SetPeriodsRequest struct {
	Year    int                `json:"year" validate:"required,min=2000,max=2100"`
	Periods []PeriodRangeInput `json:"periods" validate:"required,min=1,max=3,dive"`
}
