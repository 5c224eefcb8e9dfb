package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/models"
)

type fakeDashboardSessionRepo struct {
	sessions   []models.StudySession
	total      int
	completed  int
	lastFilter models.SessionFilter
}

func (f *fakeDashboardSessionRepo) List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error) {
	f.lastFilter = filter
	return f.sessions, nil
}

func (f *fakeDashboardSessionRepo) CompletionStats(ctx context.Context, ownerID string) (int, int, error) {
	return f.total, f.completed, nil
}

type fakeDashboardSubjectRepo struct {
	subjects []models.Subject
}

func (f *fakeDashboardSubjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error) {
	return f.subjects, nil
}

func dashboardDay(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

func newDashboardFixture() (*fakeDashboardSessionRepo, *fakeDashboardSubjectRepo, *DashboardService) {
	sessions := &fakeDashboardSessionRepo{total: 10, completed: 4}
	subjects := &fakeDashboardSubjectRepo{subjects: []models.Subject{
		{ID: "math", Name: "Math", Color: "#3B82F6", Priority: models.PriorityHigh, ExamDate: dashboardDay(10)},
		{ID: "hist", Name: "History", Color: "#EC4899", Priority: models.PriorityLow, ExamDate: dashboardDay(25)},
		{ID: "art", Name: "Art", Color: "#10B981", Priority: models.PriorityMedium, ExamDate: dashboardDay(2)},
	}}
	svc := NewDashboardService(sessions, subjects, nil, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC) }
	return sessions, subjects, svc
}

func TestDashboardSummaryProgress(t *testing.T) {
	_, _, svc := newDashboardFixture()

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Progress.Completed)
	assert.Equal(t, 10, summary.Progress.Total)
	assert.Equal(t, 40, summary.Progress.Percent)
}

func TestDashboardSummaryProgressRounds(t *testing.T) {
	sessions, _, svc := newDashboardFixture()
	sessions.total = 3
	sessions.completed = 2

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 67, summary.Progress.Percent)
}

func TestDashboardSummaryProgressEmpty(t *testing.T) {
	sessions, _, svc := newDashboardFixture()
	sessions.total = 0
	sessions.completed = 0

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Zero(t, summary.Progress.Percent)
}

func TestDashboardSummaryUpcomingSessions(t *testing.T) {
	sessions, _, svc := newDashboardFixture()
	for day := 3; day <= 5; day++ {
		for _, subjectID := range []string{"math", "hist", "art"} {
			sessions.sessions = append(sessions.sessions, models.StudySession{
				ID:        subjectID,
				SubjectID: subjectID,
				Date:      dashboardDay(day),
				Duration:  60,
			})
		}
	}

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Len(t, summary.UpcomingSessions, 5)
	assert.Equal(t, "Math", summary.UpcomingSessions[0].SubjectName)
	assert.Equal(t, "#3B82F6", summary.UpcomingSessions[0].SubjectColor)

	require.NotNil(t, sessions.lastFilter.Completed)
	assert.False(t, *sessions.lastFilter.Completed)
	require.NotNil(t, sessions.lastFilter.From)
	require.NotNil(t, sessions.lastFilter.To)
	assert.Equal(t, dashboardDay(3), *sessions.lastFilter.From)
	assert.Equal(t, dashboardDay(6), *sessions.lastFilter.To)
}

func TestDashboardSummaryUpcomingExams(t *testing.T) {
	_, _, svc := newDashboardFixture()

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)

	// The Art exam on March 2 is in the past; March 10 and March 25 remain,
	// ordered soonest first.
	require.Len(t, summary.UpcomingExams, 2)
	assert.Equal(t, "math", summary.UpcomingExams[0].SubjectID)
	assert.Equal(t, 7, summary.UpcomingExams[0].DaysUntilExam)
	assert.Equal(t, "hist", summary.UpcomingExams[1].SubjectID)
	assert.Equal(t, 22, summary.UpcomingExams[1].DaysUntilExam)
}

func TestDashboardSummaryExamWindowBound(t *testing.T) {
	_, subjects, svc := newDashboardFixture()
	subjects.subjects = append(subjects.subjects, models.Subject{
		ID: "far", Name: "Far Exam", ExamDate: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	})

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)

	for _, exam := range summary.UpcomingExams {
		assert.NotEqual(t, "far", exam.SubjectID)
	}
}
