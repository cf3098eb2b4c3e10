package models

import "time"

// GradeKind classifies grade entries.
type GradeKind string

const (
	// GradeKindExam is a numeric 0-10 exam grade.
	GradeKindExam GradeKind = "EXAM"
	// GradeKindAssignment is a letter graded assignment mapped to the numeric scale.
	GradeKindAssignment GradeKind = "ASSIGNMENT"
	// GradeKindQualitative is a TEA/TEP/TED report on a single activity.
	GradeKindQualitative GradeKind = "QUALITATIVE"
	// GradeKindFinalGrade is the manually saved numeric grade of a period.
	GradeKindFinalGrade GradeKind = "FINAL_GRADE"
	// GradeKindFinalReport is the manually saved qualitative report of a period.
	GradeKindFinalReport GradeKind = "FINAL_REPORT"
)

// Valid reports whether the kind is supported.
func (k GradeKind) Valid() bool {
	switch k {
	case GradeKindExam, GradeKindAssignment, GradeKindQualitative, GradeKindFinalGrade, GradeKindFinalReport:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the kind is a period override.
func (k GradeKind) IsFinal() bool {
	return k == GradeKindFinalGrade || k == GradeKindFinalReport
}

// Qualitative is the TEA/TEP/TED trajectory report scale.
type Qualitative string

const (
	// QualitativeTEA is an advanced, satisfactory trajectory.
	QualitativeTEA Qualitative = "TEA"
	// QualitativeTEP is a trajectory in progress that needs support.
	QualitativeTEP Qualitative = "TEP"
	// QualitativeTED is a discontinued trajectory.
	QualitativeTED Qualitative = "TED"
	// QualitativeNone is displayed when no data exists for the period.
	QualitativeNone Qualitative = "-"
)

// Valid reports whether q is one of TEA, TEP or TED.
func (q Qualitative) Valid() bool {
	return q == QualitativeTEA || q == QualitativeTEP || q == QualitativeTED
}

// Assessment is a gradable column (exam, assignment or qualitative activity).
// Entries reference it by ID; period, date and description are display grouping only.
type Assessment struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Period      int       `db:"period" json:"period"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	Kind        GradeKind `db:"kind" json:"kind"`
	Weight      *float64  `db:"weight" json:"weight,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GradeEntry is a single grade of one student. Period finals carry no assessment.
type GradeEntry struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	Period       int          `db:"period" json:"period"`
	AssessmentID *string      `db:"assessment_id" json:"assessment_id,omitempty"`
	Kind         GradeKind    `db:"kind" json:"kind"`
	Value        *float64     `db:"value" json:"value"`
	Report       *Qualitative `db:"report" json:"report,omitempty"`
	Display      *string      `db:"display" json:"display,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// GradeFilter allows querying of grade entries.
type GradeFilter struct {
	CourseID     string
	StudentID    string
	AssessmentID string
	Period       int
}

// AssessmentRequest is the create/update payload of an assessment column.
type AssessmentRequest struct {
	Period      int       `json:"period" validate:"required,min=1,max=3"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Description string    `json:"description" validate:"required,max=255"`
	Kind        GradeKind `json:"kind" validate:"required,oneof=EXAM ASSIGNMENT QUALITATIVE"`
	Weight      *float64  `json:"weight,omitempty" validate:"omitempty,gte=0"`
}

// EnterGradeRequest carries the raw grade text typed by the teacher.
type EnterGradeRequest struct {
	Raw string `json:"raw" validate:"max=16"`
}

// PeriodFinalRequest saves or clears a manual period override.
type PeriodFinalRequest struct {
	Period int       `json:"period" validate:"required,min=1,max=3"`
	Kind   GradeKind `json:"kind" validate:"required,oneof=FINAL_GRADE FINAL_REPORT"`
	Raw    string    `json:"raw" validate:"max=16"`
}

// GradeWriteResult is returned by grade writes. Ignored is set when the raw
// input could not be parsed and the stored value was left untouched.
type GradeWriteResult struct {
	Entry   *GradeEntry `json:"entry,omitempty"`
	Ignored bool        `json:"ignored"`
	Cleared bool        `json:"cleared"`
}
