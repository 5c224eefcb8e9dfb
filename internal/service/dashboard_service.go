package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/planner"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

const (
	sessionLookaheadDays = 3
	examLookaheadDays    = 30
	dashboardListLimit   = 5
)

type dashboardSessionRepository interface {
	List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error)
	CompletionStats(ctx context.Context, ownerID string) (total int, completed int, err error)
}

type dashboardSubjectRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error)
}

// DashboardService aggregates progress, upcoming sessions and upcoming
// exams into a single summary, cached per owner.
type DashboardService struct {
	sessions dashboardSessionRepository
	subjects dashboardSubjectRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger

	now func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(sessions dashboardSessionRepository, subjects dashboardSubjectRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		sessions: sessions,
		subjects: subjects,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns the owner's dashboard, serving from cache when possible.
func (s *DashboardService) Summary(ctx context.Context, ownerID string) (*dto.DashboardSummaryResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", ownerID)
	if s.cache != nil {
		var cached dto.DashboardSummaryResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	summary, err := s.build(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *DashboardService) build(ctx context.Context, ownerID string) (*dto.DashboardSummaryResponse, error) {
	today := planner.DateOnly(s.now().UTC())

	total, completed, err := s.sessions.CompletionStats(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completion stats")
	}
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(completed) / float64(total) * 100))
	}

	subjects, err := s.subjects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	subjectByID := make(map[string]models.Subject, len(subjects))
	for _, subject := range subjects {
		subjectByID[subject.ID] = subject
	}

	upcomingSessions, err := s.upcomingSessions(ctx, ownerID, today, subjectByID)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummaryResponse{
		Progress: dto.ProgressSection{
			Completed: completed,
			Total:     total,
			Percent:   percent,
		},
		UpcomingSessions: upcomingSessions,
		UpcomingExams:    s.upcomingExams(subjects, today),
	}, nil
}

func (s *DashboardService) upcomingSessions(ctx context.Context, ownerID string, today time.Time, subjectByID map[string]models.Subject) ([]dto.UpcomingSession, error) {
	windowEnd := today.AddDate(0, 0, sessionLookaheadDays)
	pending := false
	sessions, err := s.sessions.List(ctx, ownerID, models.SessionFilter{
		From:      &today,
		To:        &windowEnd,
		Completed: &pending,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming sessions")
	}

	out := make([]dto.UpcomingSession, 0, dashboardListLimit)
	for _, session := range sessions {
		if len(out) == dashboardListLimit {
			break
		}
		item := dto.UpcomingSession{
			ID:        session.ID,
			SubjectID: session.SubjectID,
			Date:      session.Date,
			Duration:  session.Duration,
		}
		if subject, ok := subjectByID[session.SubjectID]; ok {
			item.SubjectName = subject.Name
			item.SubjectColor = subject.Color
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *DashboardService) upcomingExams(subjects []models.Subject, today time.Time) []dto.UpcomingExam {
	windowEnd := today.AddDate(0, 0, examLookaheadDays)

	exams := make([]dto.UpcomingExam, 0, dashboardListLimit)
	for _, subject := range subjects {
		examDay := planner.DateOnly(subject.ExamDate)
		if examDay.Before(today) || examDay.After(windowEnd) {
			continue
		}
		exams = append(exams, dto.UpcomingExam{
			SubjectID:     subject.ID,
			Name:          subject.Name,
			Color:         subject.Color,
			Priority:      string(subject.Priority),
			ExamDate:      examDay,
			DaysUntilExam: int(examDay.Sub(today).Hours() / 24),
		})
	}

	sort.Slice(exams, func(i, j int) bool {
		return exams[i].ExamDate.Before(exams[j].ExamDate)
	})
	if len(exams) > dashboardListLimit {
		exams = exams[:dashboardListLimit]
	}
	return exams
}
