package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gradebook-api/internal/models"
)

func TestResolveExamStates(t *testing.T) {
	failed := exam("s1", 1, "a1", f(4))
	instances := []models.RemediationInstance{
		{ID: "r2", AssessmentID: "a1", Date: day(2024, 5, 20)},
		{ID: "r1", AssessmentID: "a1", Date: day(2024, 5, 10)},
		{ID: "rx", AssessmentID: "other", Date: day(2024, 5, 1)},
	}

	assert.Equal(t, NoFailure, ResolveExam(exam("s1", 1, "a1", f(7)), instances, nil))
	assert.Equal(t, NoFailure, ResolveExam(exam("s1", 1, "a1", nil), instances, nil))
	assert.Equal(t, PendingRemediation, ResolveExam(failed, instances, nil))

	ungraded := []models.RemediationResult{{InstanceID: "r1", StudentID: "s1", Approved: false}}
	assert.Equal(t, StillFailing, ResolveExam(failed, instances, ungraded))
	assert.Equal(t, StatusDisapproved, AggregateStatus([]RemediationState{ResolveExam(failed, instances, ungraded)}))

	disapproved := []models.RemediationResult{{InstanceID: "r1", StudentID: "s1", Grade: f(5)}}
	assert.Equal(t, StillFailing, ResolveExam(failed, instances, disapproved))

	otherStudent := []models.RemediationResult{{InstanceID: "r1", StudentID: "s2", Grade: f(9), Approved: true}}
	assert.Equal(t, PendingRemediation, ResolveExam(failed, instances, otherStudent))

	otherExam := []models.RemediationResult{{InstanceID: "rx", StudentID: "s1", Grade: f(9), Approved: true}}
	assert.Equal(t, PendingRemediation, ResolveExam(failed, instances, otherExam))
}

func TestResolveExamIsMonotonicAfterApproval(t *testing.T) {
	failed := exam("s1", 1, "a1", f(3))
	instances := []models.RemediationInstance{
		{ID: "r1", AssessmentID: "a1", Date: day(2024, 5, 10)},
		{ID: "r2", AssessmentID: "a1", Date: day(2024, 5, 20)},
		{ID: "r3", AssessmentID: "a1", Date: day(2024, 6, 1)},
	}
	results := []models.RemediationResult{
		{InstanceID: "r1", StudentID: "s1", Grade: f(5)},
		{InstanceID: "r2", StudentID: "s1", Grade: f(8), Approved: true},
	}
	assert.Equal(t, Resolved, ResolveExam(failed, instances, results))

	results = append(results, models.RemediationResult{InstanceID: "r3", StudentID: "s1", Grade: f(2)})
	assert.Equal(t, Resolved, ResolveExam(failed, instances, results))
}

func TestAggregateStatusReportsWorst(t *testing.T) {
	cases := []struct {
		name   string
		states []RemediationState
		want   RemediationStatus
	}{
		{"no exams", nil, StatusNone},
		{"all passed", []RemediationState{NoFailure, NoFailure}, StatusNone},
		{"all resolved", []RemediationState{Resolved, NoFailure, Resolved}, StatusApproved},
		{"still failing", []RemediationState{Resolved, StillFailing}, StatusDisapproved},
		{"pending", []RemediationState{Resolved, PendingRemediation}, StatusPending},
		{"pending beats still failing", []RemediationState{StillFailing, PendingRemediation}, StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AggregateStatus(tc.states))
		})
	}
}

func TestApprovedByGrade(t *testing.T) {
	assert.True(t, ApprovedByGrade(f(7)))
	assert.False(t, ApprovedByGrade(f(6.99)))
	assert.False(t, ApprovedByGrade(nil))
}

func TestResolveAttemptsForPendingSubjects(t *testing.T) {
	assert.Equal(t, PendingRemediation, ResolveAttempts(nil))
	assert.Equal(t, StillFailing, ResolveAttempts([]Attempt{{Date: day(2024, 3, 1), Grade: f(4)}}))
	assert.Equal(t, StillFailing, ResolveAttempts([]Attempt{{Date: day(2024, 3, 1)}}))
	assert.Equal(t, Resolved, ResolveAttempts([]Attempt{
		{Date: day(2024, 7, 1), Grade: f(4)},
		{Date: day(2024, 3, 1), Grade: f(8), Approved: true},
	}))
}
