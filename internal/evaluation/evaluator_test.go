package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
)

func scenarioRecords() Records {
	return Records{
		Grades: []models.GradeEntry{
			exam("s1", 1, "a1", f(4)),
			exam("s1", 1, "a2", f(8)),
		},
	}
}

func student(id string, condition models.StudentCondition) models.Student {
	return models.Student{ID: id, FirstName: "Ana", LastName: id, Condition: condition}
}

func TestScenarioFailedExamWithoutRemediationIsPending(t *testing.T) {
	cal := DefaultCalendar(2024, models.PeriodSchemeTrimester)
	ev, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionRegular), scenarioRecords())
	require.NoError(t, err)

	p1 := ev.Periods[0]
	assert.Equal(t, "6.00", p1.Computed.String())
	assert.Equal(t, StatusPending, p1.Remediation)
	assert.Equal(t, 1, p1.FailedExams)
	assert.Equal(t, models.QualitativeTEP, p1.Suggested)
}

func TestScenarioApprovedRemediationKeepsAverage(t *testing.T) {
	records := scenarioRecords()
	records.Remediations = []models.RemediationInstance{{ID: "r1", AssessmentID: "a1", Date: day(2024, 4, 10)}}
	records.RemediationResults = []models.RemediationResult{{InstanceID: "r1", StudentID: "s1", Grade: f(7), Approved: true}}

	cal := DefaultCalendar(2024, models.PeriodSchemeTrimester)
	ev, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionRegular), records)
	require.NoError(t, err)

	p1 := ev.Periods[0]
	assert.Equal(t, StatusApproved, p1.Remediation)
	assert.Equal(t, "6.00", p1.Average.Value().String())
	assert.Equal(t, 1, p1.ResolvedExams)
	assert.Equal(t, 1, ev.Year.ExamsResolved)
	assert.Equal(t, 1, ev.Year.ExamsPassed)
}

func TestEvaluateStudentOverridesWin(t *testing.T) {
	records := scenarioRecords()
	records.Grades = append(records.Grades,
		models.GradeEntry{StudentID: "s1", Period: 1, Kind: models.GradeKindFinalGrade, Value: f(9)},
		models.GradeEntry{StudentID: "s1", Period: 1, Kind: models.GradeKindFinalReport, Report: q(models.QualitativeTEA)},
		exam("s1", 2, "a3", f(7)),
	)

	cal := DefaultCalendar(2024, models.PeriodSchemeBimester)
	ev, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionRepeating), records)
	require.NoError(t, err)

	p1 := ev.Periods[0]
	assert.Equal(t, "6.00", p1.Computed.String())
	assert.True(t, p1.Average.IsOverridden())
	assert.Equal(t, 9.0, p1.Average.Value().Value)
	assert.Equal(t, models.QualitativeTEP, p1.Suggested)
	assert.Equal(t, models.QualitativeTEA, p1.Report.Value())

	assert.Equal(t, "8.00", ev.Year.Average.String())
	assert.Equal(t, StatusPending, ev.Year.Remediation)
}

func TestEvaluateStudentExcluded(t *testing.T) {
	cal := DefaultCalendar(2024, models.PeriodSchemeBimester)
	ev, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionCannotAttend), scenarioRecords())
	require.NoError(t, err)
	assert.True(t, ev.Excluded)
	assert.Empty(t, ev.Periods)
	assert.Nil(t, ev.Year)
}

func TestEvaluateRejectsMismatchedYear(t *testing.T) {
	cal := DefaultCalendar(2023, models.PeriodSchemeBimester)
	_, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionRegular), Records{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluator{}.EvaluateCourse(0, Calendar{}, "c1", nil, Records{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateCourseAggregates(t *testing.T) {
	roster := []models.Student{
		student("s1", models.ConditionRegular),
		student("s2", models.ConditionRegular),
		student("s3", models.ConditionCannotAttend),
		student("s4", models.ConditionRegular),
	}
	records := Records{
		Grades: []models.GradeEntry{
			exam("s1", 1, "a1", f(4)),
			exam("s1", 1, "a2", f(8)),
			exam("s2", 1, "a1", f(9)),
			exam("s3", 1, "a1", f(1)),
		},
		Attendance: []models.AttendanceEntry{
			{StudentID: "s4", Date: day(2024, 2, 1), Present: false},
		},
	}

	cal := DefaultCalendar(2024, models.PeriodSchemeBimester)
	ev, err := Evaluator{}.EvaluateCourse(2024, cal, "c1", roster, records)
	require.NoError(t, err)

	assert.Len(t, ev.Students, 4)
	assert.Equal(t, 1, ev.Excluded)
	require.Len(t, ev.Periods, 2)

	p1 := ev.Periods[0]
	assert.Equal(t, 3, p1.Evaluated)
	assert.Equal(t, "7.50", p1.ClassAverage.String())
	assert.Equal(t, 1, p1.Reports[models.QualitativeTEA])
	assert.Equal(t, 1, p1.Reports[models.QualitativeTEP])
	assert.Equal(t, 1, p1.Reports[models.QualitativeTED])
	assert.Equal(t, 1, p1.Remediation[StatusPending])
	assert.Equal(t, 2, p1.Remediation[StatusNone])

	p2 := ev.Periods[1]
	assert.False(t, p2.ClassAverage.Valid)
	assert.Equal(t, 0, p2.Reports[models.QualitativeTEA])
}

func TestEvaluateStudentYearCountsUseWholeEnrollment(t *testing.T) {
	cal, err := NewCalendar(2024, models.PeriodSchemeBimester, []models.SchoolPeriod{
		{Year: 2024, Period: 1, StartsOn: day(2024, 3, 1), EndsOn: day(2024, 7, 5)},
		{Year: 2024, Period: 2, StartsOn: day(2024, 7, 25), EndsOn: day(2024, 12, 10)},
	})
	require.NoError(t, err)

	records := Records{
		Grades: []models.GradeEntry{
			exam("s1", 1, "a1", f(8)),
			exam("s1", 2, "a2", f(3)),
			exam("s1", 3, "stray-pass", f(9)),
			exam("s1", 3, "stray-fail", f(2)),
		},
		Sanctions: []models.Sanction{
			{StudentID: "s1", Date: day(2024, 4, 1)},
			{StudentID: "s1", Date: day(2024, 7, 15)},
		},
	}
	ev, err := Evaluator{}.EvaluateStudent(2024, cal, student("s1", models.ConditionRegular), records)
	require.NoError(t, err)

	assert.Equal(t, 1, ev.Periods[0].Sanctions)
	assert.Equal(t, 0, ev.Periods[1].Sanctions)
	assert.Equal(t, 2, ev.Year.Sanctions)
	assert.Equal(t, 1, ev.Year.ExamsPassed)
	assert.Equal(t, 1, ev.Year.ExamsFailed)
}
