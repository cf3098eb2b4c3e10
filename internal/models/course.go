package models

import "time"

// Course is one subject taught to one group of students in one academic year.
type Course struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Subject   string    `db:"subject" json:"subject"`
	Year      int       `db:"year" json:"year"`
	Schedule  *string   `db:"schedule" json:"schedule,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter scopes course listing.
type CourseFilter struct {
	SchoolID string
	OwnerID  string
	Year     int
}

// CourseRequest is the create/update payload of a course.
type CourseRequest struct {
	Name     string  `json:"name" validate:"required,max=160"`
	Subject  string  `json:"subject" validate:"required,max=120"`
	Year     int     `json:"year" validate:"required,min=2000,max=2100"`
	Schedule *string `json:"schedule,omitempty" validate:"omitempty,max=255"`
}
