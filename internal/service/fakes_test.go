package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

var (
	owner    = Actor{UserID: "teacher-1", Role: models.RoleTeacher}
	stranger = Actor{UserID: "teacher-2", Role: models.RoleTeacher}
	admin    = Actor{UserID: "admin-1", Role: models.RoleAdmin}
)

func day(raw string) time.Time {
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

type fakeSchools struct {
	items   map[string]*models.School
	periods map[string][]models.SchoolPeriod
}

func newFakeSchools(schools ...models.School) *fakeSchools {
	f := &fakeSchools{items: map[string]*models.School{}, periods: map[string][]models.SchoolPeriod{}}
	for i := range schools {
		s := schools[i]
		f.items[s.ID] = &s
	}
	return f
}

func (f *fakeSchools) ListByOwner(ctx context.Context, ownerID string) ([]models.School, error) {
	var out []models.School
	for _, s := range f.items {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSchools) FindByID(ctx context.Context, id string) (*models.School, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSchools) Create(ctx context.Context, s *models.School) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSchools) Update(ctx context.Context, s *models.School) error {
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSchools) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeSchools) ListPeriods(ctx context.Context, schoolID string, year int) ([]models.SchoolPeriod, error) {
	return f.periods[fmt.Sprintf("%s|%d", schoolID, year)], nil
}

func (f *fakeSchools) ReplacePeriods(ctx context.Context, schoolID string, year int, periods []models.SchoolPeriod) error {
	f.periods[fmt.Sprintf("%s|%d", schoolID, year)] = periods
	return nil
}

type fakeCourses struct {
	items map[string]*models.Course
}

func newFakeCourses(courses ...models.Course) *fakeCourses {
	f := &fakeCourses{items: map[string]*models.Course{}}
	for i := range courses {
		c := courses[i]
		f.items[c.ID] = &c
	}
	return f
}

func (f *fakeCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.items {
		if filter.SchoolID != "" && c.SchoolID != filter.SchoolID {
			continue
		}
		if filter.Year != 0 && c.Year != filter.Year {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) Create(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCourses) Update(ctx context.Context, c *models.Course) error {
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCourses) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeStudents struct {
	items map[string]*models.Student
}

func newFakeStudents(students ...models.Student) *fakeStudents {
	f := &fakeStudents{items: map[string]*models.Student{}}
	for i := range students {
		s := students[i]
		f.items[s.ID] = &s
	}
	return f
}

func (f *fakeStudents) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.items {
		if s.CourseID == courseID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

func (f *fakeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudents) Create(ctx context.Context, s *models.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeStudents) Update(ctx context.Context, s *models.Student) error {
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeStudents) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeAssessments struct {
	items map[string]*models.Assessment
}

func newFakeAssessments(items ...models.Assessment) *fakeAssessments {
	f := &fakeAssessments{items: map[string]*models.Assessment{}}
	for i := range items {
		a := items[i]
		f.items[a.ID] = &a
	}
	return f
}

func (f *fakeAssessments) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, a := range f.items {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (f *fakeAssessments) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssessments) Create(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAssessments) Update(ctx context.Context, a *models.Assessment) error {
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAssessments) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeGrades struct {
	entries []models.GradeEntry
}

func (f *fakeGrades) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	var out []models.GradeEntry
	for _, g := range f.entries {
		if filter.CourseID != "" && g.CourseID != filter.CourseID {
			continue
		}
		if filter.Period != 0 && g.Period != filter.Period {
			continue
		}
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGrades) UpsertForAssessment(ctx context.Context, g *models.GradeEntry) error {
	for i, e := range f.entries {
		if e.AssessmentID != nil && *e.AssessmentID == *g.AssessmentID && e.StudentID == g.StudentID {
			g.ID = e.ID
			f.entries[i] = *g
			return nil
		}
	}
	g.ID = uuid.NewString()
	f.entries = append(f.entries, *g)
	return nil
}

func (f *fakeGrades) UpsertFinal(ctx context.Context, g *models.GradeEntry) error {
	for i, e := range f.entries {
		if e.AssessmentID == nil && e.StudentID == g.StudentID && e.CourseID == g.CourseID && e.Period == g.Period && e.Kind == g.Kind {
			g.ID = e.ID
			f.entries[i] = *g
			return nil
		}
	}
	g.ID = uuid.NewString()
	f.entries = append(f.entries, *g)
	return nil
}

func (f *fakeGrades) DeleteForAssessment(ctx context.Context, studentID, assessmentID string) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.StudentID == studentID && e.AssessmentID != nil && *e.AssessmentID == assessmentID {
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

func (f *fakeGrades) DeleteFinal(ctx context.Context, studentID, courseID string, period int, kind models.GradeKind) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.AssessmentID == nil && e.StudentID == studentID && e.CourseID == courseID && e.Period == period && e.Kind == kind {
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

type fakeAttendance struct {
	entries map[string]*models.AttendanceEntry
	failFor map[string]bool
}

func newFakeAttendance(entries ...models.AttendanceEntry) *fakeAttendance {
	f := &fakeAttendance{entries: map[string]*models.AttendanceEntry{}, failFor: map[string]bool{}}
	for i := range entries {
		e := entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		f.entries[e.ID] = &e
	}
	return f
}

func (f *fakeAttendance) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceEntry, error) {
	var out []models.AttendanceEntry
	for _, e := range f.entries {
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.DateFrom != nil && e.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && e.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeAttendance) FindByID(ctx context.Context, id string) (*models.AttendanceEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeAttendance) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	if f.failFor[entry.StudentID] {
		return errors.New("write failed")
	}
	for id, e := range f.entries {
		if e.StudentID == entry.StudentID && e.CourseID == entry.CourseID && e.Date.Equal(entry.Date) {
			entry.ID = id
			cp := *entry
			f.entries[id] = &cp
			return nil
		}
	}
	entry.ID = uuid.NewString()
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeAttendance) Delete(ctx context.Context, id string) error {
	delete(f.entries, id)
	return nil
}

type fakeHomework struct {
	items    []models.Homework
	statuses []models.HomeworkStatus
}

func (f *fakeHomework) ListByCourse(ctx context.Context, courseID string) ([]models.Homework, error) {
	var out []models.Homework
	for _, h := range f.items {
		if h.CourseID == courseID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHomework) ListStatuses(ctx context.Context, courseID string) ([]models.HomeworkStatus, error) {
	return f.statuses, nil
}

type fakeSanctions struct {
	items []models.Sanction
}

func (f *fakeSanctions) ListByCourse(ctx context.Context, courseID string) ([]models.Sanction, error) {
	var out []models.Sanction
	for _, s := range f.items {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRemediation struct {
	instances map[string]*models.RemediationInstance
	results   []models.RemediationResult
}

func newFakeRemediation() *fakeRemediation {
	return &fakeRemediation{instances: map[string]*models.RemediationInstance{}}
}

func (f *fakeRemediation) ListInstances(ctx context.Context, courseID string) ([]models.RemediationInstance, error) {
	var out []models.RemediationInstance
	for _, inst := range f.instances {
		if inst.CourseID == courseID {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (f *fakeRemediation) FindInstance(ctx context.Context, id string) (*models.RemediationInstance, error) {
	inst, ok := f.instances[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *inst
	return &cp, nil
}

func (f *fakeRemediation) CreateInstance(ctx context.Context, inst *models.RemediationInstance) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	cp := *inst
	f.instances[inst.ID] = &cp
	return nil
}

func (f *fakeRemediation) DeleteInstance(ctx context.Context, id string) error {
	delete(f.instances, id)
	return nil
}

func (f *fakeRemediation) ListResults(ctx context.Context, courseID string) ([]models.RemediationResult, error) {
	var out []models.RemediationResult
	for _, r := range f.results {
		if inst, ok := f.instances[r.InstanceID]; ok && inst.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemediation) UpsertResult(ctx context.Context, res *models.RemediationResult) error {
	for i, r := range f.results {
		if r.InstanceID == res.InstanceID && r.StudentID == res.StudentID {
			res.ID = r.ID
			f.results[i] = *res
			return nil
		}
	}
	res.ID = uuid.NewString()
	f.results = append(f.results, *res)
	return nil
}

// fakeCacheRepo stores JSON payloads in memory and supports trailing-star patterns.
type fakeCacheRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	sets    int
	deletes []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.sets++
	f.data[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeCacheRepo) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}
