package evaluation

import (
	"fmt"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// Records are the course records loaded for one academic year.
type Records struct {
	Grades             []models.GradeEntry
	Attendance         []models.AttendanceEntry
	Homeworks          []models.Homework
	HomeworkStatuses   []models.HomeworkStatus
	Sanctions          []models.Sanction
	Remediations       []models.RemediationInstance
	RemediationResults []models.RemediationResult
}

// PeriodEvaluation is the evaluation of one student in one period.
type PeriodEvaluation struct {
	Period        int                         `json:"period"`
	Computed      Score                       `json:"computed_average"`
	Average       Outcome[Score]              `json:"average"`
	Attendance    Percent                     `json:"attendance"`
	Homework      Percent                     `json:"homework"`
	Remediation   RemediationStatus           `json:"remediation"`
	Suggested     models.Qualitative          `json:"suggested_report"`
	Report        Outcome[models.Qualitative] `json:"report"`
	FailedExams   int                         `json:"failed_exams"`
	ResolvedExams int                         `json:"resolved_exams"`
	Sanctions     int                         `json:"sanctions"`
}

// YearEvaluation composes the periods of one student into the yearly outcome.
type YearEvaluation struct {
	Average       Score              `json:"average"`
	Attendance    Percent            `json:"attendance"`
	Homework      Percent            `json:"homework"`
	Remediation   RemediationStatus  `json:"remediation"`
	Suggested     models.Qualitative `json:"suggested_report"`
	ExamsPassed   int                `json:"exams_passed"`
	ExamsFailed   int                `json:"exams_failed"`
	ExamsResolved int                `json:"exams_resolved"`
	Sanctions     int                `json:"sanctions"`
}

// StudentEvaluation is the full evaluation of one student. Excluded students
// carry no periods and no yearly outcome.
type StudentEvaluation struct {
	StudentID string                  `json:"student_id"`
	Name      string                  `json:"name"`
	Condition models.StudentCondition `json:"condition"`
	Excluded  bool                    `json:"excluded"`
	Periods   []PeriodEvaluation      `json:"periods,omitempty"`
	Year      *YearEvaluation         `json:"year,omitempty"`
}

// PeriodSummary aggregates a period across the evaluated students.
type PeriodSummary struct {
	Period       int                        `json:"period"`
	ClassAverage Score                      `json:"class_average"`
	Evaluated    int                        `json:"evaluated"`
	Reports      map[models.Qualitative]int `json:"reports"`
	Remediation  map[RemediationStatus]int  `json:"remediation"`
}

// CourseEvaluation is the evaluation of a whole roster.
type CourseEvaluation struct {
	CourseID string              `json:"course_id"`
	Year     int                 `json:"year"`
	Scheme   models.PeriodScheme `json:"scheme"`
	Students []StudentEvaluation `json:"students"`
	Periods  []PeriodSummary     `json:"periods"`
	Excluded int                 `json:"excluded"`
}

// Evaluator composes the calculators over a calendar. The zero value is ready to use.
type Evaluator struct{}

// EvaluateStudent evaluates one student for the given academic year. Records
// may hold the whole course; entries of other students are ignored.
func (Evaluator) EvaluateStudent(year int, cal Calendar, student models.Student, records Records) (StudentEvaluation, error) {
	if err := checkYear(year, cal); err != nil {
		return StudentEvaluation{}, err
	}
	return evaluateStudent(cal, student, indexRecords(records)[student.ID], records), nil
}

// EvaluateCourse evaluates every student of the roster and the per-period aggregates.
func (Evaluator) EvaluateCourse(year int, cal Calendar, courseID string, roster []models.Student, records Records) (CourseEvaluation, error) {
	if err := checkYear(year, cal); err != nil {
		return CourseEvaluation{}, err
	}

	byStudent := indexRecords(records)
	result := CourseEvaluation{CourseID: courseID, Year: year, Scheme: cal.Scheme}
	for _, s := range roster {
		ev := evaluateStudent(cal, s, byStudent[s.ID], records)
		if ev.Excluded {
			result.Excluded++
		}
		result.Students = append(result.Students, ev)
	}
	result.Periods = summarise(cal, result.Students)
	return result, nil
}

func checkYear(year int, cal Calendar) error {
	if year <= 0 {
		return fmt.Errorf("%w: academic year %d", ErrInvalidInput, year)
	}
	if cal.Year != year {
		return fmt.Errorf("%w: calendar for %d used to evaluate %d", ErrInvalidInput, cal.Year, year)
	}
	return nil
}

type studentRecords struct {
	grades     []models.GradeEntry
	attendance []models.AttendanceEntry
	sanctions  []models.Sanction
}

func indexRecords(r Records) map[string]*studentRecords {
	idx := make(map[string]*studentRecords)
	get := func(id string) *studentRecords {
		sr, ok := idx[id]
		if !ok {
			sr = &studentRecords{}
			idx[id] = sr
		}
		return sr
	}
	for _, g := range r.Grades {
		sr := get(g.StudentID)
		sr.grades = append(sr.grades, g)
	}
	for _, a := range r.Attendance {
		sr := get(a.StudentID)
		sr.attendance = append(sr.attendance, a)
	}
	for _, s := range r.Sanctions {
		sr := get(s.StudentID)
		sr.sanctions = append(sr.sanctions, s)
	}
	return idx
}

func evaluateStudent(cal Calendar, student models.Student, own *studentRecords, all Records) StudentEvaluation {
	ev := StudentEvaluation{
		StudentID: student.ID,
		Name:      student.FullName(),
		Condition: student.Condition,
	}
	if student.Condition.Excluded() {
		ev.Excluded = true
		return ev
	}
	if own == nil {
		own = &studentRecords{}
	}

	year := &YearEvaluation{}
	var effective []Score
	var allStates []RemediationState
	inCalendar := make(map[int]bool, len(cal.Periods))
	for _, pr := range cal.Periods {
		inCalendar[pr.Period] = true
		pe, states := evaluatePeriod(pr, student.ID, own, all)
		ev.Periods = append(ev.Periods, pe)
		effective = append(effective, pe.Average.Value())
		allStates = append(allStates, states...)
		year.ExamsFailed += pe.FailedExams
		year.ExamsResolved += pe.ResolvedExams
	}

	// Exams are counted over the calendar's periods; sanctions over the whole
	// enrollment, including days between periods.
	for _, g := range own.grades {
		if inCalendar[g.Period] && g.Kind == models.GradeKindExam && g.Value != nil && !IsFailingExam(g) {
			year.ExamsPassed++
		}
	}
	year.Sanctions = len(own.sanctions)

	year.Average = YearlyAverage(effective)
	year.Attendance = AttendancePercentage(own.attendance, cal.YearRange())
	year.Homework = HomeworkCompletion(all.Homeworks, all.HomeworkStatuses, student.ID, 0)
	year.Remediation = AggregateStatus(allStates)
	year.Suggested = Suggest(SuggestInput{
		Average:     year.Average,
		Attendance:  year.Attendance,
		Homework:    year.Homework,
		Remediation: year.Remediation,
	})
	ev.Year = year
	return ev
}

func evaluatePeriod(pr PeriodRange, studentID string, own *studentRecords, all Records) (PeriodEvaluation, []RemediationState) {
	pe := PeriodEvaluation{Period: pr.Period}

	var entries []models.GradeEntry
	var finalGrade *float64
	var finalReport *models.Qualitative
	var states []RemediationState
	for _, g := range own.grades {
		if g.Period != pr.Period {
			continue
		}
		switch g.Kind {
		case models.GradeKindFinalGrade:
			finalGrade = g.Value
			continue
		case models.GradeKindFinalReport:
			finalReport = g.Report
			continue
		}
		entries = append(entries, g)
		if IsFailingExam(g) {
			state := ResolveExam(g, all.Remediations, all.RemediationResults)
			states = append(states, state)
			pe.FailedExams++
			if state == Resolved {
				pe.ResolvedExams++
			}
		}
	}

	pe.Computed = PeriodAverage(entries)
	pe.Average = ResolveScore(pe.Computed, finalGrade)
	pe.Attendance = AttendancePercentage(own.attendance, pr)
	pe.Homework = HomeworkCompletion(all.Homeworks, all.HomeworkStatuses, studentID, pr.Period)
	pe.Remediation = AggregateStatus(states)
	pe.Suggested = Suggest(SuggestInput{
		Average:     pe.Computed,
		Attendance:  pe.Attendance,
		Homework:    pe.Homework,
		Remediation: pe.Remediation,
	})
	pe.Report = ResolveReport(pe.Suggested, finalReport)

	for _, s := range own.sanctions {
		if pr.Contains(s.Date) {
			pe.Sanctions++
		}
	}
	return pe, states
}

func summarise(cal Calendar, students []StudentEvaluation) []PeriodSummary {
	summaries := make([]PeriodSummary, 0, len(cal.Periods))
	for i, pr := range cal.Periods {
		sum := PeriodSummary{
			Period:      pr.Period,
			Reports:     map[models.Qualitative]int{},
			Remediation: map[RemediationStatus]int{},
		}
		var averages []Score
		for _, s := range students {
			if s.Excluded || i >= len(s.Periods) {
				continue
			}
			pe := s.Periods[i]
			sum.Evaluated++
			averages = append(averages, pe.Average.Value())
			if report := pe.Report.Value(); report.Valid() {
				sum.Reports[report]++
			}
			sum.Remediation[pe.Remediation]++
		}
		sum.ClassAverage = MeanScore(averages)
		summaries = append(summaries, sum)
	}
	return summaries
}
