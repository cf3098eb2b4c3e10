package models

import "time"

// TopicLog is a lesson plan / class diary entry of a course.
type TopicLog struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      time.Time `db:"date" json:"date"`
	Topic     string    `db:"topic" json:"topic"`
	Activity  *string   `db:"activity" json:"activity,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TopicLogRequest is the create/update payload of a topic log entry.
type TopicLogRequest struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Topic    string  `json:"topic" validate:"required,max=255"`
	Activity *string `json:"activity,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}
