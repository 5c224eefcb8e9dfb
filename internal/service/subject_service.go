package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

// subjectColorPalette is cycled through when a subject is created without an
// explicit color, so sibling subjects stay visually distinct.
var subjectColorPalette = []string{
	"#3B82F6", "#8B5CF6", "#EC4899", "#F59E0B",
	"#10B981", "#EF4444", "#06B6D4", "#F97316",
}

type subjectRepository interface {
	List(ctx context.Context, ownerID string, filter models.SubjectFilter) ([]models.Subject, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, ownerID, id string) error
}

// SubjectService implements subject use cases.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's subjects matching the filter.
func (s *SubjectService) List(ctx context.Context, ownerID string, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single subject.
func (s *SubjectService) Get(ctx context.Context, ownerID, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	return subject, nil
}

// Create adds a subject for the owner, picking a palette color when none is
// supplied.
func (s *SubjectService) Create(ctx context.Context, ownerID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examDate must be YYYY-MM-DD")
	}

	color := req.Color
	if color == "" {
		existing, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
		}
		color = subjectColorPalette[len(existing)%len(subjectColorPalette)]
	}

	subject := &models.Subject{
		Name:                strings.TrimSpace(req.Name),
		ExamDate:            examDate,
		Priority:            models.SubjectPriority(req.Priority),
		EstimatedStudyHours: req.EstimatedStudyHours,
		Color:               color,
		OwnerID:             ownerID,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.invalidateDashboard(ctx, ownerID)
	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("owner_id", ownerID))
	return subject, nil
}

// Update edits the owner's subject and returns the updated record.
func (s *SubjectService) Update(ctx context.Context, ownerID, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.ExamDate != nil {
		examDate, err := time.Parse("2006-01-02", *req.ExamDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "examDate must be YYYY-MM-DD")
		}
		subject.ExamDate = examDate
	}
	if req.Priority != nil {
		subject.Priority = models.SubjectPriority(*req.Priority)
	}
	if req.EstimatedStudyHours != nil {
		subject.EstimatedStudyHours = *req.EstimatedStudyHours
	}
	if req.Color != nil {
		subject.Color = *req.Color
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	s.invalidateDashboard(ctx, ownerID)
	return subject, nil
}

// Delete removes the subject and all of its generated sessions.
func (s *SubjectService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.invalidateDashboard(ctx, ownerID)
	return nil
}

func (s *SubjectService) invalidateDashboard(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s*", ownerID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
