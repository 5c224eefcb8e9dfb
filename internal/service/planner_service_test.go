package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type fakePlannerSubjectRepo struct {
	subjects []models.Subject
	err      error
}

func (f *fakePlannerSubjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error) {
	return f.subjects, f.err
}

type fakePlannerAvailabilityRepo struct {
	entries []models.DailyAvailability
	err     error
}

func (f *fakePlannerAvailabilityRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.DailyAvailability, error) {
	return f.entries, f.err
}

type fakePlannerSessionRepo struct {
	completed   []models.StudySession
	upserted    []models.StudySession
	upsertCalls int
}

// ListCompletedIDs mirrors the repository's date >= from AND date < to bounds.
func (f *fakePlannerSessionRepo) ListCompletedIDs(ctx context.Context, ownerID string, from, to time.Time) ([]string, error) {
	var ids []string
	for _, session := range f.completed {
		if !session.Date.Before(from) && session.Date.Before(to) {
			ids = append(ids, session.ID)
		}
	}
	return ids, nil
}

func (f *fakePlannerSessionRepo) UpsertBatch(ctx context.Context, sessions []models.StudySession) error {
	f.upsertCalls++
	f.upserted = append(f.upserted, sessions...)
	return nil
}

func plannerFixtures() (*fakePlannerSubjectRepo, *fakePlannerAvailabilityRepo, *fakePlannerSessionRepo) {
	exam := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	subjects := &fakePlannerSubjectRepo{subjects: []models.Subject{
		{ID: "math", Name: "Math", ExamDate: exam, Priority: models.PriorityHigh, EstimatedStudyHours: 20, OwnerID: "owner-1"},
	}}
	availability := &fakePlannerAvailabilityRepo{entries: []models.DailyAvailability{
		{DayOfWeek: 1, AvailableHours: 2, OwnerID: "owner-1"},
		{DayOfWeek: 3, AvailableHours: 2, OwnerID: "owner-1"},
	}}
	return subjects, availability, &fakePlannerSessionRepo{}
}

func TestPlannerServiceGeneratePreview(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03"})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-03", resp.StartDate)
	assert.Equal(t, 14, resp.HorizonDays)
	assert.NotEmpty(t, resp.Sessions)
	assert.False(t, resp.Committed)
	assert.Zero(t, resp.Persisted)
	assert.Zero(t, sessions.upsertCalls, "preview must not persist")
}

func TestPlannerServiceGenerateCommit(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03", Commit: true})
	require.NoError(t, err)

	assert.True(t, resp.Committed)
	assert.Equal(t, len(resp.Sessions), resp.Persisted)
	assert.Equal(t, 1, sessions.upsertCalls)
	assert.Len(t, sessions.upserted, len(resp.Sessions))
}

func TestPlannerServiceCommitSkipsCompleted(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	// 2025-03-03 is a Monday, so the first proposed session lands there.
	sessions.completed = []models.StudySession{{
		ID:        "math-2025-03-03",
		Date:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		Completed: true,
	}}
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03", Commit: true})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.SkippedCompleted)
	assert.Equal(t, len(resp.Sessions)-1, resp.Persisted)
	for _, session := range sessions.upserted {
		assert.NotEqual(t, "math-2025-03-03", session.ID)
	}
}

func TestPlannerServiceCommitSkipsCompletedOnLastHorizonDay(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	// Sunday availability lands a session on 2025-03-16, the 14th and last
	// day of the horizon.
	availability.entries = append(availability.entries,
		models.DailyAvailability{DayOfWeek: 0, AvailableHours: 2, OwnerID: "owner-1"})
	sessions.completed = []models.StudySession{{
		ID:        "math-2025-03-16",
		Date:      time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
		Completed: true,
	}}
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03", Commit: true})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.SkippedCompleted)
	assert.Equal(t, len(resp.Sessions)-1, resp.Persisted)
	for _, session := range sessions.upserted {
		assert.NotEqual(t, "math-2025-03-16", session.ID)
	}
}

func TestPlannerServiceGenerateInvalidStartDate(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	_, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "03/03/2025"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestPlannerServiceGenerateDefaultsToToday(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 3, 16, 45, 0, 0, time.UTC)
	}

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", resp.StartDate)
}

func TestPlannerServiceGenerateSubjectLimit(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	subjects.subjects = append(subjects.subjects, models.Subject{ID: "phys"}, models.Subject{ID: "chem"})
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 2)

	_, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestPlannerServiceGenerateNoSubjects(t *testing.T) {
	subjects, availability, sessions := plannerFixtures()
	subjects.subjects = nil
	svc := NewPlannerService(subjects, availability, sessions, nil, nil, nil, nil, 0)

	resp, err := svc.Generate(context.Background(), "owner-1", dto.GenerateScheduleRequest{StartDate: "2025-03-03", Commit: true})
	require.NoError(t, err)

	assert.Empty(t, resp.Sessions)
	assert.Zero(t, resp.Persisted)
	assert.Zero(t, sessions.upsertCalls)
}
