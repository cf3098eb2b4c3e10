package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

func newRemediationFixture() (*RemediationService, *fakeRemediation) {
	courses := newFakeCourses(
		models.Course{ID: "c1", SchoolID: "s1", OwnerID: owner.UserID, Year: 2024},
		models.Course{ID: "c2", SchoolID: "s1", OwnerID: owner.UserID, Year: 2024},
	)
	students := newFakeStudents(models.Student{ID: "st1", CourseID: "c1", FirstName: "Ana"})
	assessments := newFakeAssessments(
		models.Assessment{ID: "exam1", CourseID: "c1", Period: 1, Date: day("2024-04-10"), Kind: models.GradeKindExam},
		models.Assessment{ID: "hw1", CourseID: "c1", Period: 1, Date: day("2024-04-10"), Kind: models.GradeKindAssignment},
		models.Assessment{ID: "exam2", CourseID: "c2", Period: 1, Date: day("2024-04-10"), Kind: models.GradeKindExam},
	)
	repo := newFakeRemediation()
	return NewRemediationService(repo, courses, assessments, students, nil, nil, nil), repo
}

func TestRemediationServiceCreateRules(t *testing.T) {
	svc, _ := newRemediationFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.RemediationRequest
	}{
		{"not an exam", models.RemediationRequest{AssessmentID: "hw1", Date: "2024-05-01"}},
		{"other course", models.RemediationRequest{AssessmentID: "exam2", Date: "2024-05-01"}},
		{"before exam", models.RemediationRequest{AssessmentID: "exam1", Date: "2024-04-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, "c1", tc.req)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}

	inst, err := svc.Create(ctx, owner, "c1", models.RemediationRequest{AssessmentID: "exam1", Date: "2024-04-10"})
	require.NoError(t, err)
	assert.Equal(t, "exam1", inst.AssessmentID)
}

func TestRemediationServiceApprovalDefaultsToPassingGrade(t *testing.T) {
	svc, repo := newRemediationFixture()
	ctx := context.Background()
	inst, err := svc.Create(ctx, owner, "c1", models.RemediationRequest{AssessmentID: "exam1", Date: "2024-05-01"})
	require.NoError(t, err)

	res, err := svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{Grade: floatPtr(7)})
	require.NoError(t, err)
	assert.True(t, res.Approved)

	res, err = svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{Grade: floatPtr(6.5)})
	require.NoError(t, err)
	assert.False(t, res.Approved)

	res, err = svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{Grade: floatPtr(4), Approved: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	require.Len(t, repo.results, 1)

	_, err = svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	overview, err := svc.List(ctx, owner, "c1")
	require.NoError(t, err)
	assert.Len(t, overview.Instances, 1)
	assert.Len(t, overview.Results, 1)

	require.NoError(t, svc.Delete(ctx, owner, inst.ID))
	_, err = svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRemediationServiceClampsResultGrades(t *testing.T) {
	svc, repo := newRemediationFixture()
	ctx := context.Background()
	inst, err := svc.Create(ctx, owner, "c1", models.RemediationRequest{AssessmentID: "exam1", Date: "2024-05-01"})
	require.NoError(t, err)

	cases := []struct {
		raw      float64
		want     float64
		approved bool
	}{
		{15, 10, true},
		{-3, 0, false},
	}
	for _, tc := range cases {
		res, err := svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{Grade: floatPtr(tc.raw)})
		require.NoError(t, err)
		require.NotNil(t, res.Grade)
		assert.Equal(t, tc.want, *res.Grade)
		assert.Equal(t, tc.approved, res.Approved)
		require.Len(t, repo.results, 1)
		assert.Equal(t, tc.want, *repo.results[0].Grade)
	}
}

func TestRemediationServiceStoresUngradedDisapproval(t *testing.T) {
	svc, repo := newRemediationFixture()
	ctx := context.Background()
	inst, err := svc.Create(ctx, owner, "c1", models.RemediationRequest{AssessmentID: "exam1", Date: "2024-05-01"})
	require.NoError(t, err)

	res, err := svc.SetResult(ctx, owner, inst.ID, "st1", models.RemediationResultRequest{Approved: boolPtr(false)})
	require.NoError(t, err)
	assert.Nil(t, res.Grade)
	assert.False(t, res.Approved)
	require.Len(t, repo.results, 1)
}
