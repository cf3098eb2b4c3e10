package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/export"
)

type studentEvaluator interface {
	EvaluateStudent(ctx context.Context, actor Actor, courseID, studentID string, year int) (*evaluation.StudentEvaluation, *models.Course, error)
}

type documentRenderer interface {
	RenderDocument(d export.Document) ([]byte, error)
}

// NarrativeReport is the narrative of one student in one course and year.
type NarrativeReport struct {
	StudentID string               `json:"student_id"`
	Student   string               `json:"student"`
	CourseID  string               `json:"course_id"`
	Subject   string               `json:"subject"`
	Year      int                  `json:"year"`
	Excluded  bool                 `json:"excluded"`
	Narrative evaluation.Narrative `json:"narrative"`
	Text      string               `json:"text"`
}

// NarrativeService renders the end-of-year narrative of a student.
type NarrativeService struct {
	evaluations studentEvaluator
	pdf         documentRenderer
	logger      *zap.Logger
}

// NewNarrativeService constructs a NarrativeService.
func NewNarrativeService(evaluations studentEvaluator, pdf documentRenderer, logger *zap.Logger) *NarrativeService {
	if pdf == nil {
		pdf = export.NewPDFRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativeService{evaluations: evaluations, pdf: pdf, logger: logger}
}

// Build returns the narrative of a student.
func (s *NarrativeService) Build(ctx context.Context, actor Actor, courseID, studentID string, year int) (*NarrativeReport, error) {
	ev, course, err := s.evaluations.EvaluateStudent(ctx, actor, courseID, studentID, year)
	if err != nil {
		return nil, err
	}
	narrative := evaluation.BuildNarrative(evaluation.NarrativeInputFor(*ev, course.Subject))
	return &NarrativeReport{
		StudentID: ev.StudentID,
		Student:   ev.Name,
		CourseID:  course.ID,
		Subject:   course.Subject,
		Year:      course.Year,
		Excluded:  ev.Excluded,
		Narrative: narrative,
		Text:      narrative.Text(),
	}, nil
}

// RenderPDF lays the narrative out as a one-page PDF.
func (s *NarrativeService) RenderPDF(ctx context.Context, actor Actor, courseID, studentID string, year int) ([]byte, string, error) {
	report, err := s.Build(ctx, actor, courseID, studentID, year)
	if err != nil {
		return nil, "", err
	}
	n := report.Narrative
	doc := export.Document{
		Title:    fmt.Sprintf("%s - %s", report.Student, report.Subject),
		Subtitle: fmt.Sprintf("Academic year %d", report.Year),
		Sections: []export.Section{
			{Heading: "Attendance", Body: n.Attendance},
			{Heading: "Homework", Body: n.Homework},
			{Heading: "Exams", Body: n.Exams},
			{Heading: "Conduct", Body: n.Conduct},
			{Heading: "Conclusion", Body: n.Conclusion},
		},
	}
	data, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, "", internalError(err, "failed to render narrative")
	}
	filename := fmt.Sprintf("narrative-%s-%d.pdf", report.StudentID, report.Year)
	return data, filename, nil
}
