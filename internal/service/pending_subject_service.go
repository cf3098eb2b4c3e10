package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
)

type pendingRepository interface {
	ListStudents(ctx context.Context, schoolID string, currentYear int) ([]models.PendingStudent, error)
	FindStudent(ctx context.Context, id string) (*models.PendingStudent, error)
	CreateStudent(ctx context.Context, ps *models.PendingStudent) error
	DeleteStudent(ctx context.Context, id string) error
	ListExams(ctx context.Context, studentIDs []string) ([]models.PendingExam, error)
	FindExam(ctx context.Context, id string) (*models.PendingExam, error)
	CreateExam(ctx context.Context, pe *models.PendingExam) error
	ListGrades(ctx context.Context, studentIDs []string) ([]models.PendingGrade, error)
	UpsertGrade(ctx context.Context, pg *models.PendingGrade) error
}

// PendingSubjectService tracks students who still owe a subject from a previous year.
type PendingSubjectService struct {
	repo      pendingRepository
	schools   schoolFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPendingSubjectService constructs a PendingSubjectService.
func NewPendingSubjectService(repo pendingRepository, schools schoolFinder, validate *validator.Validate, logger *zap.Logger) *PendingSubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PendingSubjectService{repo: repo, schools: schools, validator: validate, logger: logger}
}

// List returns the pending students of a school with their exams and derived status.
func (s *PendingSubjectService) List(ctx context.Context, actor Actor, schoolID string, currentYear int) ([]models.PendingStudentSummary, error) {
	if _, err := authorizeSchool(ctx, s.schools, actor, schoolID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, schoolID, currentYear)
	if err != nil {
		return nil, internalError(err, "failed to list pending students")
	}
	ids := make([]string, 0, len(students))
	for _, ps := range students {
		ids = append(ids, ps.ID)
	}
	exams, err := s.repo.ListExams(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to list pending exams")
	}
	grades, err := s.repo.ListGrades(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to list pending grades")
	}

	examsByStudent := make(map[string][]models.PendingExam)
	for _, e := range exams {
		examsByStudent[e.PendingStudentID] = append(examsByStudent[e.PendingStudentID], e)
	}
	gradesByStudent := make(map[string][]models.PendingGrade)
	for _, g := range grades {
		gradesByStudent[g.PendingStudentID] = append(gradesByStudent[g.PendingStudentID], g)
	}

	out := make([]models.PendingStudentSummary, 0, len(students))
	for _, ps := range students {
		studentExams := examsByStudent[ps.ID]
		studentGrades := gradesByStudent[ps.ID]
		out = append(out, models.PendingStudentSummary{
			PendingStudent: ps,
			Exams:          studentExams,
			Grades:         studentGrades,
			Status:         string(PendingStatus(studentExams, studentGrades)),
		})
	}
	return out, nil
}

// PendingStatus resolves the attempts of a pending student the same way exam
// remediation is resolved: AP once any attempt approves.
func PendingStatus(exams []models.PendingExam, grades []models.PendingGrade) evaluation.RemediationStatus {
	dates := make(map[string]models.PendingExam, len(exams))
	for _, e := range exams {
		dates[e.ID] = e
	}
	attempts := make([]evaluation.Attempt, 0, len(grades))
	for _, g := range grades {
		exam, ok := dates[g.PendingExamID]
		if !ok {
			continue
		}
		attempts = append(attempts, evaluation.Attempt{Date: exam.Date, Grade: g.Grade, Approved: g.Approved})
	}
	return evaluation.AggregateStatus([]evaluation.RemediationState{evaluation.ResolveAttempts(attempts)})
}

// CreateStudent registers a pending student in a school.
func (s *PendingSubjectService) CreateStudent(ctx context.Context, actor Actor, schoolID string, req models.PendingStudentRequest) (*models.PendingStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid pending student payload")
	}
	if _, err := authorizeSchool(ctx, s.schools, actor, schoolID); err != nil {
		return nil, err
	}
	ps := &models.PendingStudent{
		SchoolID:    schoolID,
		FullName:    req.FullName,
		Subject:     req.Subject,
		OriginYear:  req.OriginYear,
		CurrentYear: req.CurrentYear,
	}
	if err := s.repo.CreateStudent(ctx, ps); err != nil {
		return nil, internalError(err, "failed to create pending student")
	}
	return ps, nil
}

// DeleteStudent removes a pending student with their exams and grades.
func (s *PendingSubjectService) DeleteStudent(ctx context.Context, actor Actor, id string) error {
	if _, err := s.authorizeStudent(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return internalError(err, "failed to delete pending student")
	}
	return nil
}

// CreateExam schedules an exam sitting for a pending student.
func (s *PendingSubjectService) CreateExam(ctx context.Context, actor Actor, pendingStudentID string, req models.PendingExamRequest) (*models.PendingExam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid pending exam payload")
	}
	ps, err := s.authorizeStudent(ctx, actor, pendingStudentID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	exam := &models.PendingExam{PendingStudentID: ps.ID, Date: date, Description: req.Description}
	if err := s.repo.CreateExam(ctx, exam); err != nil {
		return nil, internalError(err, "failed to create pending exam")
	}
	return exam, nil
}

// SetGrade records the result of a pending exam. Approval defaults to the passing grade.
func (s *PendingSubjectService) SetGrade(ctx context.Context, actor Actor, examID, pendingStudentID string, req models.PendingGradeRequest) (*models.PendingGrade, error) {
	exam, err := s.repo.FindExam(ctx, examID)
	if err != nil {
		return nil, notFoundOr(err, "pending exam not found", "failed to load pending exam")
	}
	if exam.PendingStudentID != pendingStudentID {
		return nil, invalidInput("exam belongs to another pending student")
	}
	if _, err := s.authorizeStudent(ctx, actor, pendingStudentID); err != nil {
		return nil, err
	}
	value, approved, err := attemptOutcome(req.Grade, req.Approved)
	if err != nil {
		return nil, err
	}
	grade := &models.PendingGrade{PendingExamID: exam.ID, PendingStudentID: pendingStudentID, Grade: value, Approved: approved}
	if err := s.repo.UpsertGrade(ctx, grade); err != nil {
		return nil, internalError(err, "failed to store pending grade")
	}
	return grade, nil
}

func (s *PendingSubjectService) authorizeStudent(ctx context.Context, actor Actor, id string) (*models.PendingStudent, error) {
	ps, err := s.repo.FindStudent(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "pending student not found", "failed to load pending student")
	}
	if _, err := authorizeSchool(ctx, s.schools, actor, ps.SchoolID); err != nil {
		return nil, err
	}
	return ps, nil
}
