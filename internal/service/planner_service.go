package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/planner"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type plannerSubjectRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error)
}

type plannerAvailabilityRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.DailyAvailability, error)
}

type plannerSessionRepository interface {
	ListCompletedIDs(ctx context.Context, ownerID string, from, to time.Time) ([]string, error)
	UpsertBatch(ctx context.Context, sessions []models.StudySession) error
}

// PlannerService runs the allocation engine over the owner's stored
// subjects and availability, optionally committing the result.
type PlannerService struct {
	subjects     plannerSubjectRepository
	availability plannerAvailabilityRepository
	sessions     plannerSessionRepository
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	maxSubjects  int

	now func() time.Time
}

// NewPlannerService creates a planner service.
func NewPlannerService(
	subjects plannerSubjectRepository,
	availability plannerAvailabilityRepository,
	sessions plannerSessionRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	maxSubjects int,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		subjects:     subjects,
		availability: availability,
		sessions:     sessions,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		maxSubjects:  maxSubjects,
		now:          time.Now,
	}
}

// Generate builds a schedule proposal from the owner's current subjects and
// availability. With Commit set, pending sessions for the horizon are
// upserted; sessions already marked completed keep their stored state and
// are reported in SkippedCompleted.
func (s *PlannerService) Generate(ctx context.Context, ownerID string, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	startDate := planner.DateOnly(s.now().UTC())
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		startDate = planner.DateOnly(parsed)
	}

	subjects, err := s.subjects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	if s.maxSubjects > 0 && len(subjects) > s.maxSubjects {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot plan more than %d subjects", s.maxSubjects))
	}

	availability, err := s.availability.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	sessions := planner.GenerateSchedule(subjects, availability, startDate, ownerID)

	resp := &dto.GenerateScheduleResponse{
		StartDate:   startDate.Format("2006-01-02"),
		HorizonDays: planner.HorizonDays,
		Sessions:    sessions,
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration(len(sessions))
	}

	if !req.Commit {
		return resp, nil
	}

	persisted, skipped, err := s.commit(ctx, ownerID, startDate, sessions)
	if err != nil {
		return nil, err
	}
	resp.Committed = true
	resp.Persisted = persisted
	resp.SkippedCompleted = skipped

	s.invalidateDashboard(ctx, ownerID)
	s.logger.Info("schedule committed",
		zap.String("owner_id", ownerID),
		zap.String("start_date", resp.StartDate),
		zap.Int("persisted", persisted),
		zap.Int("skipped_completed", skipped))
	return resp, nil
}

// commit upserts the proposal, never touching sessions the owner already
// completed. The completed filter runs here and again as a guard in the
// upsert statement.
func (s *PlannerService) commit(ctx context.Context, ownerID string, startDate time.Time, sessions []models.StudySession) (int, int, error) {
	// The repository bound is exclusive, so the window ends one day past
	// the last horizon day.
	windowEnd := startDate.AddDate(0, 0, planner.HorizonDays)
	completedIDs, err := s.sessions.ListCompletedIDs(ctx, ownerID, startDate, windowEnd)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed sessions")
	}

	completed := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	toPersist := make([]models.StudySession, 0, len(sessions))
	skipped := 0
	for _, session := range sessions {
		if _, ok := completed[session.ID]; ok {
			skipped++
			continue
		}
		toPersist = append(toPersist, session)
	}

	if len(toPersist) > 0 {
		if err := s.sessions.UpsertBatch(ctx, toPersist); err != nil {
			return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sessions")
		}
	}
	return len(toPersist), skipped, nil
}

func (s *PlannerService) invalidateDashboard(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s*", ownerID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
