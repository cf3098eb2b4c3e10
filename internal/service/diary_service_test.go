package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

func (f *fakeHomework) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			hw := f.items[i]
			return &hw, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeHomework) Create(ctx context.Context, hw *models.Homework) error {
	hw.ID = uuid.NewString()
	f.items = append(f.items, *hw)
	return nil
}

func (f *fakeHomework) Update(ctx context.Context, hw *models.Homework) error {
	for i := range f.items {
		if f.items[i].ID == hw.ID {
			f.items[i] = *hw
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeHomework) Delete(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeHomework) UpsertStatus(ctx context.Context, status *models.HomeworkStatus) error {
	for i := range f.statuses {
		if f.statuses[i].HomeworkID == status.HomeworkID && f.statuses[i].StudentID == status.StudentID {
			f.statuses[i].Status = status.Status
			return nil
		}
	}
	f.statuses = append(f.statuses, *status)
	return nil
}

func (f *fakeSanctions) FindByID(ctx context.Context, id string) (*models.Sanction, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			s := f.items[i]
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSanctions) Create(ctx context.Context, s *models.Sanction) error {
	s.ID = uuid.NewString()
	f.items = append(f.items, *s)
	return nil
}

func (f *fakeSanctions) Delete(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeTopicLogs struct {
	items map[string]models.TopicLog
}

func (f *fakeTopicLogs) ListByCourse(ctx context.Context, courseID string) ([]models.TopicLog, error) {
	var out []models.TopicLog
	for _, tl := range f.items {
		if tl.CourseID == courseID {
			out = append(out, tl)
		}
	}
	return out, nil
}

func (f *fakeTopicLogs) FindByID(ctx context.Context, id string) (*models.TopicLog, error) {
	tl, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &tl, nil
}

func (f *fakeTopicLogs) Create(ctx context.Context, tl *models.TopicLog) error {
	tl.ID = uuid.NewString()
	f.items[tl.ID] = *tl
	return nil
}

func (f *fakeTopicLogs) Update(ctx context.Context, tl *models.TopicLog) error {
	f.items[tl.ID] = *tl
	return nil
}

func (f *fakeTopicLogs) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func TestHomeworkServiceFlow(t *testing.T) {
	f := newRosterFixture()
	repo := &fakeHomework{}
	svc := NewHomeworkService(repo, f.courses, f.schools, f.students, NewCacheService(f.cache, nil, 0, nil, true), nil, nil)
	ctx := context.Background()

	hw, err := svc.Create(ctx, owner, "c1", models.HomeworkRequest{Period: 2, Date: "2024-05-06", Description: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, day("2024-05-06"), hw.Date)
	assert.Contains(t, f.cache.deletes, "evaluation:c1:*")

	_, err = svc.Create(ctx, stranger, "c1", models.HomeworkRequest{Period: 2, Date: "2024-05-06", Description: "Essay"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, owner, "c1", models.HomeworkRequest{Period: 2, Date: "06/05/2024", Description: "Essay"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	updated, err := svc.Update(ctx, owner, hw.ID, models.HomeworkRequest{Period: 3, Date: "2024-09-01", Description: "Essay v2"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Period)

	status, err := svc.SetStatus(ctx, owner, hw.ID, "st1", models.HomeworkStatusRequest{Status: models.HomeworkMissing})
	require.NoError(t, err)
	assert.Equal(t, models.HomeworkMissing, status.Status)
	_, err = svc.SetStatus(ctx, owner, hw.ID, "st1", models.HomeworkStatusRequest{Status: models.HomeworkDone})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, owner, hw.ID, "st1", models.HomeworkStatusRequest{Status: "late"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	overview, err := svc.List(ctx, owner, "c1")
	require.NoError(t, err)
	require.Len(t, overview.Homeworks, 1)
	require.Len(t, overview.Statuses, 1)
	assert.Equal(t, models.HomeworkDone, overview.Statuses[0].Status)

	require.NoError(t, svc.Delete(ctx, owner, hw.ID))
	err = svc.Delete(ctx, owner, hw.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSanctionServiceFlow(t *testing.T) {
	f := newRosterFixture()
	repo := &fakeSanctions{}
	svc := NewSanctionService(repo, f.courses, f.students, NewCacheService(f.cache, nil, 0, nil, true), nil, nil)
	ctx := context.Background()

	sanction, err := svc.Create(ctx, owner, "c1", models.SanctionRequest{StudentID: "st1", Date: "2024-04-10", Reason: "Disruption"})
	require.NoError(t, err)
	assert.Contains(t, f.cache.deletes, "evaluation:c1:*")

	_, err = svc.Create(ctx, owner, "c1", models.SanctionRequest{StudentID: "ghost", Date: "2024-04-10", Reason: "Disruption"})
	assert.Error(t, err)

	items, err := svc.List(ctx, owner, "c1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.True(t, errors.Is(svc.Delete(ctx, stranger, sanction.ID), appErrors.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, owner, sanction.ID))
	assert.Empty(t, repo.items)
}

func TestTopicLogServiceFlow(t *testing.T) {
	f := newRosterFixture()
	repo := &fakeTopicLogs{items: map[string]models.TopicLog{}}
	svc := NewTopicLogService(repo, f.courses, nil, nil)
	ctx := context.Background()

	notes := "Bring maps"
	tl, err := svc.Create(ctx, owner, "c1", models.TopicLogRequest{Date: "2024-03-11", Topic: "Independence", Notes: &notes})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, "c1", models.TopicLogRequest{Date: "2024-03-11"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	updated, err := svc.Update(ctx, owner, tl.ID, models.TopicLogRequest{Date: "2024-03-12", Topic: "Independence II"})
	require.NoError(t, err)
	assert.Equal(t, "Independence II", updated.Topic)
	assert.Nil(t, updated.Notes)

	_, err = svc.Update(ctx, stranger, tl.ID, models.TopicLogRequest{Date: "2024-03-12", Topic: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	items, err := svc.List(ctx, admin, "c1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, owner, tl.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, owner, tl.ID), appErrors.ErrNotFound))
}
