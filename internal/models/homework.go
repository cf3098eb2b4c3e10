package models

import "time"

// HomeworkStatusValue is the completion state of one homework for one student.
type HomeworkStatusValue string

const (
	HomeworkDone       HomeworkStatusValue = "done"
	HomeworkMissing    HomeworkStatusValue = "missing"
	HomeworkIncomplete HomeworkStatusValue = "incomplete"
	HomeworkAbsent     HomeworkStatusValue = "absent"
)

// Valid returns true when the status is a supported value.
func (s HomeworkStatusValue) Valid() bool {
	switch s {
	case HomeworkDone, HomeworkMissing, HomeworkIncomplete, HomeworkAbsent:
		return true
	default:
		return false
	}
}

// Homework is an assignment given to a whole course.
type Homework struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Period      int       `db:"period" json:"period"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HomeworkStatus is the completion record of one (homework, student) pair.
type HomeworkStatus struct {
	ID         string              `db:"id" json:"id"`
	HomeworkID string              `db:"homework_id" json:"homework_id"`
	StudentID  string              `db:"student_id" json:"student_id"`
	Status     HomeworkStatusValue `db:"status" json:"status"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

// HomeworkRequest is the create/update payload of a homework assignment.
type HomeworkRequest struct {
	Period      int    `json:"period" validate:"required,min=1,max=3"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required,max=255"`
}

// HomeworkStatusRequest sets the completion status of one student.
type HomeworkStatusRequest struct {
	Status HomeworkStatusValue `json:"status" validate:"required,oneof=done missing incomplete absent"`
}
