package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/planner"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.StudySession, error)
	Update(ctx context.Context, session *models.StudySession) error
	MarkCompleted(ctx context.Context, ownerID, id string, ts time.Time) error
	Delete(ctx context.Context, ownerID, id string) error
}

// SessionService implements session management use cases.
type SessionService struct {
	repo      sessionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(repo sessionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's stored sessions within the filter window.
func (s *SessionService) List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error) {
	sessions, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Get returns a single stored session.
func (s *SessionService) Get(ctx context.Context, ownerID, id string) (*models.StudySession, error) {
	session, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	return session, nil
}

// Update reschedules a session or changes its duration. Completed sessions
// are read-only.
func (s *SessionService) Update(ctx context.Context, ownerID, id string, req dto.UpdateSessionRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "completed sessions cannot be edited")
	}

	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		session.Date = planner.DateOnly(date)
	}
	if req.Duration > 0 {
		session.Duration = req.Duration
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	s.invalidateDashboard(ctx, ownerID)
	return session, nil
}

// Complete marks the session as done. Completing an already completed
// session is a no-op.
func (s *SessionService) Complete(ctx context.Context, ownerID, id string) (*models.StudySession, error) {
	session, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return session, nil
	}

	now := time.Now().UTC()
	if err := s.repo.MarkCompleted(ctx, ownerID, id, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete session")
	}
	session.Completed = true
	session.UpdatedAt = now

	s.invalidateDashboard(ctx, ownerID)
	s.logger.Info("session completed", zap.String("session_id", id), zap.String("owner_id", ownerID))
	return session, nil
}

// Delete removes a stored session.
func (s *SessionService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.invalidateDashboard(ctx, ownerID)
	return nil
}

func (s *SessionService) invalidateDashboard(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s*", ownerID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
