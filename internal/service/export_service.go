package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/evaluation"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/export"
	"github.com/noah-isme/gradebook-api/pkg/storage"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (io.ReadSeekCloser, os.FileInfo, error)
	Delete(name string) error
	Sweep(now time.Time, ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(jobID, path string) (string, time.Time, error)
	Verify(token string) (storage.DownloadToken, error)
}

type courseEvaluator interface {
	ForCourse(ctx context.Context, course *models.Course, year int) (*evaluation.CourseEvaluation, error)
}

type assessmentLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
}

// ExportSources groups the readers the export tables are built from.
type ExportSources struct {
	Courses     courseFinder
	Roster      rosterLister
	Assessments assessmentLister
	Grades      gradeLister
	Attendance  attendanceLister
	Evaluations courseEvaluator
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds gradebook tables and persists the rendered files.
type ExportService struct {
	src     ExportSources
	storage fileStorage
	signer  downloadSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(src ExportSources, files fileStorage, signer downloadSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{src: src, storage: files, signer: signer, logger: logger, cfg: cfg}
}

// Generate builds the table of a job, renders it and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("generate export: nil job")
	}
	renderer, err := export.ForFormat(string(job.Params.Format))
	if err != nil {
		return nil, err
	}
	course, err := s.src.Courses.FindByID(ctx, job.Params.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load course %s: %w", job.Params.CourseID, err)
	}

	var table export.Table
	switch job.Type {
	case models.ReportTypeGradebook:
		table, err = s.gradebookTable(ctx, course, job.Params.Period)
	case models.ReportTypeAttendance:
		table, err = s.attendanceTable(ctx, course, job.Params.Year)
	case models.ReportTypeEvaluation:
		table, err = s.evaluationTable(ctx, course, job.Params.Year)
	default:
		err = fmt.Errorf("unsupported report type %s", job.Type)
	}
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(table)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", renderer.Extension(), err)
	}
	filename := fmt.Sprintf("%s/%s-%s-%s.%s", time.Now().UTC().Format("20060102"), job.Type, slug(course.Name), job.ID, renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.downloadURL(token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken verifies a download token. Expired tokens are accepted when
// allowExpired is set so cleanup can still locate the file.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadToken, error) {
	decoded, err := s.signer.Verify(token)
	if err != nil {
		if allowExpired && decoded.Path != "" && isExpired(err) {
			return decoded, nil
		}
		return storage.DownloadToken{}, err
	}
	return decoded, nil
}

// Open returns the stored file.
func (s *ExportService) Open(relPath string) (io.ReadSeekCloser, os.FileInfo, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Sweep removes files older than ttl.
func (s *ExportService) Sweep(ttl time.Duration) ([]string, error) {
	return s.storage.Sweep(time.Now(), ttl)
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	return prefix + "/export/" + token
}

func (s *ExportService) gradebookTable(ctx context.Context, course *models.Course, period int) (export.Table, error) {
	roster, err := s.src.Roster.ListByCourse(ctx, course.ID)
	if err != nil {
		return export.Table{}, fmt.Errorf("load roster: %w", err)
	}
	assessments, err := s.src.Assessments.ListByCourse(ctx, course.ID)
	if err != nil {
		return export.Table{}, fmt.Errorf("load assessments: %w", err)
	}
	grades, err := s.src.Grades.List(ctx, models.GradeFilter{CourseID: course.ID, Period: period})
	if err != nil {
		return export.Table{}, fmt.Errorf("load grades: %w", err)
	}

	columns := []string{"Student"}
	var shown []models.Assessment
	for _, a := range assessments {
		if period > 0 && a.Period != period {
			continue
		}
		shown = append(shown, a)
		columns = append(columns, fmt.Sprintf("P%d %s %s", a.Period, a.Date.Format("02/01"), a.Description))
	}

	cells := make(map[string]string, len(grades))
	for _, g := range grades {
		if g.AssessmentID == nil {
			continue
		}
		cells[g.StudentID+"|"+*g.AssessmentID] = gradeDisplay(g)
	}

	table := export.Table{Title: course.Name, Subtitle: fmt.Sprintf("%s %d gradebook", course.Subject, course.Year), Columns: columns}
	for _, st := range roster {
		row := []string{st.FullName()}
		for _, a := range shown {
			row = append(row, cells[st.ID+"|"+a.ID])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func (s *ExportService) attendanceTable(ctx context.Context, course *models.Course, year int) (export.Table, error) {
	result, err := s.src.Evaluations.ForCourse(ctx, course, year)
	if err != nil {
		return export.Table{}, err
	}
	roster, err := s.src.Roster.ListByCourse(ctx, course.ID)
	if err != nil {
		return export.Table{}, fmt.Errorf("load roster: %w", err)
	}
	entries, err := s.src.Attendance.List(ctx, models.AttendanceFilter{CourseID: course.ID})
	if err != nil {
		return export.Table{}, fmt.Errorf("load attendance: %w", err)
	}
	type tally struct{ present, absent, justified int }
	counts := make(map[string]*tally)
	for _, e := range entries {
		t := counts[e.StudentID]
		if t == nil {
			t = &tally{}
			counts[e.StudentID] = t
		}
		switch {
		case e.Present:
			t.present++
		case e.Justified():
			t.absent++
			t.justified++
		default:
			t.absent++
		}
	}
	rates := make(map[string]evaluation.Percent, len(result.Students))
	for _, ev := range result.Students {
		if ev.Year != nil {
			rates[ev.StudentID] = ev.Year.Attendance
		}
	}

	table := export.Table{
		Title:    course.Name,
		Subtitle: fmt.Sprintf("%s %d attendance", course.Subject, result.Year),
		Columns:  []string{"Student", "Present", "Absent", "Justified", "Attendance"},
	}
	for _, st := range roster {
		t := counts[st.ID]
		if t == nil {
			t = &tally{}
		}
		table.Rows = append(table.Rows, []string{
			st.FullName(),
			fmt.Sprint(t.present),
			fmt.Sprint(t.absent),
			fmt.Sprint(t.justified),
			rates[st.ID].String(),
		})
	}
	return table, nil
}

func (s *ExportService) evaluationTable(ctx context.Context, course *models.Course, year int) (export.Table, error) {
	result, err := s.src.Evaluations.ForCourse(ctx, course, year)
	if err != nil {
		return export.Table{}, err
	}
	periods := len(result.Periods)
	columns := []string{"Student", "Condition"}
	for p := 1; p <= periods; p++ {
		columns = append(columns, fmt.Sprintf("P%d average", p), fmt.Sprintf("P%d report", p), fmt.Sprintf("P%d remediation", p))
	}
	columns = append(columns, "Year average", "Year report")

	table := export.Table{Title: course.Name, Subtitle: fmt.Sprintf("%s %d evaluation", course.Subject, result.Year), Columns: columns}
	for _, ev := range result.Students {
		row := []string{ev.Name, string(ev.Condition)}
		if ev.Excluded {
			table.Rows = append(table.Rows, row)
			continue
		}
		for _, pe := range ev.Periods {
			row = append(row, pe.Average.Value().String(), string(pe.Report.Value()), string(pe.Remediation))
		}
		if ev.Year != nil {
			row = append(row, ev.Year.Average.String(), string(ev.Year.Suggested))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func gradeDisplay(g models.GradeEntry) string {
	switch {
	case g.Display != nil && *g.Display != "":
		return *g.Display
	case g.Report != nil:
		return string(*g.Report)
	case g.Value != nil:
		return evaluation.ScoreOf(*g.Value).String()
	default:
		return ""
	}
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "course"
	}
	return out
}

func isExpired(err error) bool {
	return errors.Is(err, storage.ErrExpiredToken)
}
