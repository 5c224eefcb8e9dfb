package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type fakeSubjectRepo struct {
	subjects map[string]*models.Subject
	order    []string
	deleted  []string
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{subjects: map[string]*models.Subject{}}
}

func (f *fakeSubjectRepo) List(ctx context.Context, ownerID string, filter models.SubjectFilter) ([]models.Subject, int, error) {
	subjects, _ := f.ListByOwner(ctx, ownerID)
	return subjects, len(subjects), nil
}

func (f *fakeSubjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range f.order {
		if subject := f.subjects[id]; subject != nil && subject.OwnerID == ownerID {
			out = append(out, *subject)
		}
	}
	return out, nil
}

func (f *fakeSubjectRepo) FindByID(ctx context.Context, ownerID, id string) (*models.Subject, error) {
	if subject, ok := f.subjects[id]; ok && subject.OwnerID == ownerID {
		copied := *subject
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	f.subjects[subject.ID] = subject
	f.order = append(f.order, subject.ID)
	return nil
}

func (f *fakeSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeSubjectRepo) Delete(ctx context.Context, ownerID, id string) error {
	delete(f.subjects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func validSubjectRequest() dto.CreateSubjectRequest {
	return dto.CreateSubjectRequest{
		Name:                "Mathematics",
		ExamDate:            "2025-06-15",
		Priority:            "high",
		EstimatedStudyHours: 40,
	}
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	subject, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, subject.ID)
	assert.Equal(t, "Mathematics", subject.Name)
	assert.Equal(t, models.PriorityHigh, subject.Priority)
	assert.Equal(t, "owner-1", subject.OwnerID)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), subject.ExamDate)
}

func TestSubjectServiceCreateAssignsPaletteColor(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	first, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)

	assert.Equal(t, subjectColorPalette[0], first.Color)
	assert.Equal(t, subjectColorPalette[1], second.Color)
	assert.NotEqual(t, first.Color, second.Color)
}

func TestSubjectServiceCreateKeepsExplicitColor(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	req := validSubjectRequest()
	req.Color = "#ABCDEF"
	subject, err := svc.Create(context.Background(), "owner-1", req)
	require.NoError(t, err)
	assert.Equal(t, "#ABCDEF", subject.Color)
}

func TestSubjectServiceCreateValidation(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	cases := map[string]func(r *dto.CreateSubjectRequest){
		"missing name":     func(r *dto.CreateSubjectRequest) { r.Name = "" },
		"bad exam date":    func(r *dto.CreateSubjectRequest) { r.ExamDate = "15/06/2025" },
		"bad priority":     func(r *dto.CreateSubjectRequest) { r.Priority = "urgent" },
		"zero hours":       func(r *dto.CreateSubjectRequest) { r.EstimatedStudyHours = 0 },
		"negative hours":   func(r *dto.CreateSubjectRequest) { r.EstimatedStudyHours = -3 },
		"malformed color":  func(r *dto.CreateSubjectRequest) { r.Color = "blue" },
		"excessive hours":  func(r *dto.CreateSubjectRequest) { r.EstimatedStudyHours = 9999 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSubjectRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), "owner-1", req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestSubjectServiceUpdate(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	subject, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)

	newName := "Applied Mathematics"
	newPriority := "medium"
	updated, err := svc.Update(context.Background(), "owner-1", subject.ID, dto.UpdateSubjectRequest{
		Name:     &newName,
		Priority: &newPriority,
	})
	require.NoError(t, err)

	assert.Equal(t, "Applied Mathematics", updated.Name)
	assert.Equal(t, models.PriorityMedium, updated.Priority)
	assert.Equal(t, subject.ExamDate, updated.ExamDate, "unset fields stay untouched")
}

func TestSubjectServiceUpdateNotFound(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	name := "Anything"
	_, err := svc.Update(context.Background(), "owner-1", "missing", dto.UpdateSubjectRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceGetScopedToOwner(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	subject, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "owner-2", subject.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceDelete(t *testing.T) {
	repo := newFakeSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, nil)

	subject, err := svc.Create(context.Background(), "owner-1", validSubjectRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", subject.ID))
	assert.Contains(t, repo.deleted, subject.ID)

	err = svc.Delete(context.Background(), "owner-1", subject.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
