package models

import "time"

// Sanction is a disciplinary record; only its count matters for evaluation.
type Sanction struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      time.Time `db:"date" json:"date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SanctionRequest records a sanction.
type SanctionRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,max=255"`
}
