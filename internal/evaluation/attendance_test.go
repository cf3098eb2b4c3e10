package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gradebook-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func attendanceRun(present, absent, justified int, start time.Time) []models.AttendanceEntry {
	var out []models.AttendanceEntry
	date := start
	for i := 0; i < present; i++ {
		out = append(out, models.AttendanceEntry{StudentID: "s1", Date: date, Present: true})
		date = date.AddDate(0, 0, 1)
	}
	reason := "medical"
	for i := 0; i < absent; i++ {
		e := models.AttendanceEntry{StudentID: "s1", Date: date}
		if i < justified {
			e.Justification = &reason
		}
		out = append(out, e)
		date = date.AddDate(0, 0, 1)
	}
	return out
}

func TestAttendancePercentageBoundary(t *testing.T) {
	r := PeriodRange{Period: 1, Start: day(2024, 3, 1), End: day(2024, 6, 30)}
	entries := attendanceRun(3, 9, 1, day(2024, 3, 4))

	pct := AttendancePercentage(entries, r)
	assert.Equal(t, Percent{Value: 25, Valid: true}, pct)
	assert.Equal(t, models.QualitativeTEP, Suggest(SuggestInput{Attendance: pct, Remediation: StatusNone}))
}

func TestAttendancePercentageIgnoresJustification(t *testing.T) {
	r := PeriodRange{Period: 1, Start: day(2024, 3, 1), End: day(2024, 6, 30)}
	plain := attendanceRun(5, 3, 0, day(2024, 3, 4))
	justified := attendanceRun(5, 3, 3, day(2024, 3, 4))

	assert.Equal(t, AttendancePercentage(plain, r), AttendancePercentage(justified, r))
	assert.True(t, justified[5].Justified())
}

func TestAttendancePercentageRangeIsInclusive(t *testing.T) {
	r := PeriodRange{Period: 1, Start: day(2024, 3, 1), End: day(2024, 3, 31)}
	entries := []models.AttendanceEntry{
		{Date: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), Present: true},
		{Date: time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC), Present: false},
		{Date: day(2024, 4, 1), Present: false},
		{Date: day(2024, 2, 29), Present: false},
	}
	assert.Equal(t, 50, AttendancePercentage(entries, r).Value)
}

func TestAttendancePercentageNoData(t *testing.T) {
	r := PeriodRange{Period: 2, Start: day(2024, 7, 1), End: day(2024, 12, 31)}
	pct := AttendancePercentage(attendanceRun(2, 0, 0, day(2024, 3, 4)), r)
	assert.False(t, pct.Valid)
	assert.Equal(t, "-", pct.String())
}

func TestHomeworkCompletion(t *testing.T) {
	hws := []models.Homework{
		{ID: "h1", Period: 1},
		{ID: "h2", Period: 1},
		{ID: "h3", Period: 1},
		{ID: "h4", Period: 2},
	}
	statuses := []models.HomeworkStatus{
		{HomeworkID: "h1", StudentID: "s1", Status: models.HomeworkDone},
		{HomeworkID: "h2", StudentID: "s1", Status: models.HomeworkIncomplete},
		{HomeworkID: "h3", StudentID: "s2", Status: models.HomeworkDone},
		{HomeworkID: "h4", StudentID: "s1", Status: models.HomeworkDone},
	}

	assert.Equal(t, 33, HomeworkCompletion(hws, statuses, "s1", 1).Value)
	assert.Equal(t, 100, HomeworkCompletion(hws, statuses, "s1", 2).Value)
	assert.Equal(t, 50, HomeworkCompletion(hws, statuses, "s1", 0).Value)
	assert.False(t, HomeworkCompletion(hws, statuses, "s1", 3).Valid)
}

func TestHomeworkNoAssignmentsDefaultsInSuggestion(t *testing.T) {
	hw := HomeworkCompletion(nil, nil, "s1", 2)
	assert.False(t, hw.Valid)

	got := Suggest(SuggestInput{
		Average:     ScoreOf(8),
		Attendance:  Percent{Value: 90, Valid: true},
		Homework:    hw,
		Remediation: StatusNone,
	})
	assert.Equal(t, models.QualitativeTEA, got)
}

func TestCalendarDefaultsAndStoredPeriods(t *testing.T) {
	cal := DefaultCalendar(2024, models.PeriodSchemeBimester)
	assert.Len(t, cal.Periods, 2)
	assert.Equal(t, day(2024, 6, 30), cal.Periods[0].End)
	assert.Equal(t, day(2024, 12, 31), cal.Periods[1].End)

	cal, err := NewCalendar(2024, models.PeriodSchemeTrimester, []models.SchoolPeriod{
		{Year: 2024, Period: 1, StartsOn: day(2024, 3, 1), EndsOn: day(2024, 5, 31)},
		{Year: 2023, Period: 2, StartsOn: day(2023, 6, 1), EndsOn: day(2023, 8, 31)},
	})
	assert.NoError(t, err)
	assert.Len(t, cal.Periods, 3)
	assert.Equal(t, day(2024, 3, 1), cal.Periods[0].Start)
	assert.Equal(t, day(2024, 5, 1), cal.Periods[1].Start)

	yr := cal.YearRange()
	assert.Equal(t, day(2024, 3, 1), yr.Start)
	assert.Equal(t, day(2024, 12, 31), yr.End)

	_, err = NewCalendar(2024, models.PeriodSchemeBimester, []models.SchoolPeriod{{Year: 2024, Period: 3, StartsOn: day(2024, 9, 1), EndsOn: day(2024, 12, 1)}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
