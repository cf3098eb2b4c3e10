package models

import "time"

// PendingStudent is a student who still owes a course from a previous year.
type PendingStudent struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Subject     string    `db:"subject" json:"subject"`
	OriginYear  int       `db:"origin_year" json:"origin_year"`
	CurrentYear int       `db:"current_year" json:"current_year"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PendingExam is an exam sitting offered to pending students.
type PendingExam struct {
	ID               string    `db:"id" json:"id"`
	PendingStudentID string    `db:"pending_student_id" json:"pending_student_id"`
	Date             time.Time `db:"date" json:"date"`
	Description      *string   `db:"description" json:"description,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// PendingGrade is the result of a pending student in a pending exam.
type PendingGrade struct {
	ID               string    `db:"id" json:"id"`
	PendingExamID    string    `db:"pending_exam_id" json:"pending_exam_id"`
	PendingStudentID string    `db:"pending_student_id" json:"pending_student_id"`
	Grade            *float64  `db:"grade" json:"grade"`
	Approved         bool      `db:"approved" json:"approved"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// PendingStudentRequest registers a student owing a subject.
type PendingStudentRequest struct {
	FullName    string `json:"full_name" validate:"required,max=160"`
	Subject     string `json:"subject" validate:"required,max=120"`
	OriginYear  int    `json:"origin_year" validate:"required,min=2000,max=2100"`
	CurrentYear int    `json:"current_year" validate:"required,min=2000,max=2100,gtefield=OriginYear"`
}

// PendingExamRequest schedules an exam sitting for a pending student.
type PendingExamRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// PendingGradeRequest stores the result of a pending exam.
type PendingGradeRequest struct {
	Grade    *float64 `json:"grade"`
	Approved *bool    `json:"approved,omitempty"`
}

// PendingStudentSummary is a pending student with the exams taken and the derived status.
type PendingStudentSummary struct {
	PendingStudent
	Exams  []PendingExam  `json:"exams"`
	Grades []PendingGrade `json:"grades"`
	Status string         `json:"status"`
}
