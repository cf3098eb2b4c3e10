package models

import "time"

// StudentCondition captures the enrollment condition of a student in a course.
type StudentCondition string

const (
	ConditionRegular      StudentCondition = "REGULAR"
	ConditionRepeating    StudentCondition = "REPEATING"
	ConditionCannotAttend StudentCondition = "CANNOT_ATTEND"
)

// Valid returns true when the condition is a supported value.
func (c StudentCondition) Valid() bool {
	switch c {
	case ConditionRegular, ConditionRepeating, ConditionCannotAttend:
		return true
	default:
		return false
	}
}

// Excluded reports whether students in this condition are left out of aggregates.
func (c StudentCondition) Excluded() bool {
	return c == ConditionCannotAttend
}

// Student represents a learner enrolled in a course.
type Student struct {
	ID        string           `db:"id" json:"id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	FirstName string           `db:"first_name" json:"first_name"`
	LastName  string           `db:"last_name" json:"last_name"`
	Condition StudentCondition `db:"condition" json:"condition"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// FullName renders "Last, First" the way rosters are printed.
func (s Student) FullName() string {
	switch {
	case s.LastName == "":
		return s.FirstName
	case s.FirstName == "":
		return s.LastName
	default:
		return s.LastName + ", " + s.FirstName
	}
}

// StudentRequest is the create/update payload of a student.
type StudentRequest struct {
	FirstName string           `json:"first_name" validate:"required,max=120"`
	LastName  string           `json:"last_name" validate:"omitempty,max=120"`
	Condition StudentCondition `json:"condition" validate:"omitempty,oneof=REGULAR REPEATING CANNOT_ATTEND"`
	Notes     *string          `json:"notes,omitempty"`
}
