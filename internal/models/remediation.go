package models

import "time"

// RemediationInstance is one re-take opportunity for a failed exam.
type RemediationInstance struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	Date         time.Time `db:"date" json:"date"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RemediationResult is the outcome of one student in one remediation instance.
type RemediationResult struct {
	ID         string    `db:"id" json:"id"`
	InstanceID string    `db:"instance_id" json:"instance_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Grade      *float64  `db:"grade" json:"grade"`
	Approved   bool      `db:"approved" json:"approved"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RemediationRequest opens a new remediation instance for a failed exam.
type RemediationRequest struct {
	AssessmentID string  `json:"assessment_id" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// RemediationResultRequest stores the outcome of a student. When Approved is
// omitted it is derived from the grade.
type RemediationResultRequest struct {
	Grade    *float64 `json:"grade"`
	Approved *bool    `json:"approved,omitempty"`
}
