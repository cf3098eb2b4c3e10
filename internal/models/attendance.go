package models

import "time"

// AttendanceEntry records whether a student attended a course on a date.
type AttendanceEntry struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	Date          time.Time `db:"date" json:"date"`
	Present       bool      `db:"present" json:"present"`
	Justification *string   `db:"justification" json:"justification,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Justified reports whether the entry is an absence with a justification.
// It is informational and never changes attendance rates.
func (a AttendanceEntry) Justified() bool {
	return !a.Present && a.Justification != nil && *a.Justification != ""
}

// AttendanceFilter scopes attendance listing.
type AttendanceFilter struct {
	CourseID  string
	StudentID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// AttendanceMark is the attendance of one student in a bulk record request.
type AttendanceMark struct {
	StudentID     string  `json:"student_id" validate:"required"`
	Present       bool    `json:"present"`
	Justification *string `json:"justification,omitempty" validate:"omitempty,max=255"`
}

// RecordAttendanceRequest records one class day for many students.
type RecordAttendanceRequest struct {
	Date  string           `json:"date" validate:"required,datetime=2006-01-02"`
	Marks []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

// AttendanceBulkResult reports the outcome of a bulk attendance write.
type AttendanceBulkResult struct {
	Saved  int                      `json:"saved"`
	Failed []AttendanceBulkConflict `json:"failed,omitempty"`
}

// AttendanceBulkConflict captures a row that could not be stored.
type AttendanceBulkConflict struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}
