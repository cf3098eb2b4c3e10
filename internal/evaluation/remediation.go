package evaluation

import (
	"sort"
	"time"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// RemediationState is the resolution of one failed exam for one student.
type RemediationState int

const (
	// NoFailure means the exam was passed or is ungraded.
	NoFailure RemediationState = iota
	// PendingRemediation means the exam failed and no attempt has been graded.
	PendingRemediation
	// StillFailing means at least one attempt was disapproved and none approved.
	StillFailing
	// Resolved means an attempt approved the exam.
	Resolved
)

func (s RemediationState) String() string {
	switch s {
	case PendingRemediation:
		return "pending"
	case StillFailing:
		return "still_failing"
	case Resolved:
		return "resolved"
	default:
		return "no_failure"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s RemediationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RemediationStatus is the aggregate remediation label of a period.
type RemediationStatus string

const (
	StatusApproved    RemediationStatus = "AP"
	StatusDisapproved RemediationStatus = "DES"
	StatusPending     RemediationStatus = "Pend."
	StatusNone        RemediationStatus = "-"
)

// Attempt is one graded or ungraded re-take.
type Attempt struct {
	Date     time.Time
	Grade    *float64
	Approved bool
}

// ResolveAttempts folds attempts in chronological order. The first approval
// wins; any recorded attempt without approval marks the exam as still failing,
// with or without a grade.
func ResolveAttempts(attempts []Attempt) RemediationState {
	ordered := make([]Attempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	state := PendingRemediation
	for _, a := range ordered {
		if a.Approved {
			return Resolved
		}
		state = StillFailing
	}
	return state
}

// ResolveExam derives the state of one exam entry from the remediation
// instances tied to its assessment and the student's results in them.
func ResolveExam(exam models.GradeEntry, instances []models.RemediationInstance, results []models.RemediationResult) RemediationState {
	if !IsFailingExam(exam) {
		return NoFailure
	}
	if exam.AssessmentID == nil {
		return PendingRemediation
	}

	byInstance := make(map[string]models.RemediationResult)
	for _, r := range results {
		if r.StudentID == exam.StudentID {
			byInstance[r.InstanceID] = r
		}
	}

	var attempts []Attempt
	for _, inst := range instances {
		if inst.AssessmentID != *exam.AssessmentID {
			continue
		}
		r, ok := byInstance[inst.ID]
		if !ok {
			continue
		}
		attempts = append(attempts, Attempt{Date: inst.Date, Grade: r.Grade, Approved: r.Approved})
	}
	return ResolveAttempts(attempts)
}

// AggregateStatus reports the worst state among the failed exams, ordered
// AP > DES > Pend. from best to worst. No failures yields "-".
func AggregateStatus(states []RemediationState) RemediationStatus {
	var failures, pending, stillFailing int
	for _, s := range states {
		switch s {
		case PendingRemediation:
			failures++
			pending++
		case StillFailing:
			failures++
			stillFailing++
		case Resolved:
			failures++
		}
	}
	switch {
	case failures == 0:
		return StatusNone
	case pending > 0:
		return StatusPending
	case stillFailing > 0:
		return StatusDisapproved
	default:
		return StatusApproved
	}
}

// ApprovedByGrade is the default approval of a remediation or pending grade
// when the teacher does not set it explicitly.
func ApprovedByGrade(grade *float64) bool {
	return grade != nil && *grade >= PassingGrade
}
