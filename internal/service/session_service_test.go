package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type fakeSessionRepo struct {
	sessions map[string]*models.StudySession
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.StudySession{}}
}

func (f *fakeSessionRepo) add(session models.StudySession) {
	f.sessions[session.ID] = &session
}

func (f *fakeSessionRepo) List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error) {
	var out []models.StudySession
	for _, session := range f.sessions {
		if session.OwnerID == ownerID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, ownerID, id string) (*models.StudySession, error) {
	if session, ok := f.sessions[id]; ok && session.OwnerID == ownerID {
		copied := *session
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *models.StudySession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) MarkCompleted(ctx context.Context, ownerID, id string, ts time.Time) error {
	if session, ok := f.sessions[id]; ok && session.OwnerID == ownerID {
		session.Completed = true
		session.UpdatedAt = ts
	}
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, ownerID, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func pendingSession() models.StudySession {
	return models.StudySession{
		ID:        "math-2025-03-03",
		SubjectID: "math",
		Date:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		Duration:  60,
		OwnerID:   "owner-1",
	}
}

func TestSessionServiceUpdate(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.add(pendingSession())
	svc := NewSessionService(repo, nil, nil, nil)

	updated, err := svc.Update(context.Background(), "owner-1", "math-2025-03-03", dto.UpdateSessionRequest{
		Date:     "2025-03-05",
		Duration: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), updated.Date)
	assert.Equal(t, 90, updated.Duration)
}

func TestSessionServiceUpdateCompletedRejected(t *testing.T) {
	repo := newFakeSessionRepo()
	session := pendingSession()
	session.Completed = true
	repo.add(session)
	svc := NewSessionService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), "owner-1", session.ID, dto.UpdateSessionRequest{Duration: 45})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceComplete(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.add(pendingSession())
	svc := NewSessionService(repo, nil, nil, nil)

	completed, err := svc.Complete(context.Background(), "owner-1", "math-2025-03-03")
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	// Completing again is a no-op, not an error.
	again, err := svc.Complete(context.Background(), "owner-1", "math-2025-03-03")
	require.NoError(t, err)
	assert.True(t, again.Completed)
}

func TestSessionServiceCompleteNotFound(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil, nil)

	_, err := svc.Complete(context.Background(), "owner-1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDelete(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.add(pendingSession())
	svc := NewSessionService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", "math-2025-03-03"))
	assert.Contains(t, repo.deleted, "math-2025-03-03")
}

func TestSessionServiceGetScopedToOwner(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.add(pendingSession())
	svc := NewSessionService(repo, nil, nil, nil)

	_, err := svc.Get(context.Background(), "owner-2", "math-2025-03-03")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
