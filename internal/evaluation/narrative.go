package evaluation

import (
	"fmt"
	"strings"
)

// NarrativeInput are the yearly indicators of one student in one course.
type NarrativeInput struct {
	StudentName   string
	Subject       string
	Attendance    Percent
	Homework      Percent
	ExamsPassed   int
	ExamsFailed   int
	ExamsResolved int
	Sanctions     int
}

// NarrativeInputFor extracts the narrative indicators from an evaluation.
func NarrativeInputFor(ev StudentEvaluation, subject string) NarrativeInput {
	in := NarrativeInput{StudentName: ev.Name, Subject: subject}
	if ev.Year == nil {
		return in
	}
	in.Attendance = ev.Year.Attendance
	in.Homework = ev.Year.Homework
	in.ExamsPassed = ev.Year.ExamsPassed
	in.ExamsFailed = ev.Year.ExamsFailed
	in.ExamsResolved = ev.Year.ExamsResolved
	in.Sanctions = ev.Year.Sanctions
	return in
}

// Narrative is the templated report of a student, one paragraph per concern.
type Narrative struct {
	Attendance   string `json:"attendance"`
	Homework     string `json:"homework"`
	Exams        string `json:"exams"`
	Conduct      string `json:"conduct"`
	Conclusion   string `json:"conclusion"`
	NeedsSupport bool   `json:"needs_support"`
}

// Paragraphs returns the paragraphs in reading order.
func (n Narrative) Paragraphs() []string {
	return []string{n.Attendance, n.Homework, n.Exams, n.Conduct, n.Conclusion}
}

// Text joins the paragraphs with blank lines.
func (n Narrative) Text() string {
	return strings.Join(n.Paragraphs(), "\n\n")
}

// BuildNarrative selects the sentence variants for each indicator band.
func BuildNarrative(in NarrativeInput) Narrative {
	name := in.StudentName
	if name == "" {
		name = "The student"
	}
	subject := in.Subject
	if subject == "" {
		subject = "the course"
	}

	n := Narrative{
		Attendance: attendanceParagraph(name, in.Attendance),
		Homework:   homeworkParagraph(name, in.Homework),
		Exams:      examsParagraph(name, in),
		Conduct:    conductParagraph(name, in.Sanctions),
	}

	uncured := in.ExamsFailed - in.ExamsResolved
	n.NeedsSupport = uncured > 0 ||
		(in.Homework.Valid && in.Homework.Value < 75) ||
		(in.Attendance.Valid && in.Attendance.Value < 75)
	if n.NeedsSupport {
		n.Conclusion = fmt.Sprintf("%s needs additional support to reach the expected outcomes in %s. "+
			"We recommend closer follow-up at home and regular contact with the teacher.", name, subject)
	} else {
		n.Conclusion = fmt.Sprintf("%s is doing well in %s and meets the expected outcomes. "+
			"We encourage keeping up the same commitment.", name, subject)
	}
	return n
}

func attendanceParagraph(name string, p Percent) string {
	switch {
	case !p.Valid:
		return "No attendance has been recorded yet."
	case p.Value >= 75:
		return fmt.Sprintf("%s attended classes regularly (%s attendance).", name, p)
	case p.Value < 25:
		return fmt.Sprintf("%s rarely attended classes (%s attendance), which seriously limits the learning process.", name, p)
	default:
		return fmt.Sprintf("%s attended classes irregularly (%s attendance); more consistent attendance is needed.", name, p)
	}
}

func homeworkParagraph(name string, p Percent) string {
	switch {
	case !p.Valid:
		return "No homework has been assigned so far."
	case p.Value >= 75:
		return fmt.Sprintf("%s completed most of the homework (%s).", name, p)
	case p.Value >= 50:
		return fmt.Sprintf("%s completed part of the homework (%s) and should hand it in more consistently.", name, p)
	default:
		return fmt.Sprintf("%s completed little of the homework (%s); this is an area that needs attention.", name, p)
	}
}

func examsParagraph(name string, in NarrativeInput) string {
	total := in.ExamsPassed + in.ExamsFailed
	if total == 0 {
		return fmt.Sprintf("%s has not taken any graded exams yet.", name)
	}
	if in.ExamsFailed == 0 {
		return fmt.Sprintf("%s passed all %d graded exams.", name, total)
	}
	text := fmt.Sprintf("%s passed %d of %d graded exams and failed %d.", name, in.ExamsPassed, total, in.ExamsFailed)
	switch {
	case in.ExamsResolved >= in.ExamsFailed:
		text += " Every failed exam was later approved through remediation."
	case in.ExamsResolved > 0:
		text += fmt.Sprintf(" %d of the failed exams were approved through remediation.", in.ExamsResolved)
	default:
		text += " None of the failed exams have been approved through remediation yet."
	}
	return text
}

func conductParagraph(name string, sanctions int) string {
	switch {
	case sanctions <= 0:
		return fmt.Sprintf("%s showed appropriate conduct with no sanctions recorded.", name)
	case sanctions <= 2:
		return fmt.Sprintf("%s received %d sanction(s); conduct should improve.", name, sanctions)
	default:
		return fmt.Sprintf("%s received %d sanctions; conduct is a serious concern that requires follow-up.", name, sanctions)
	}
}
