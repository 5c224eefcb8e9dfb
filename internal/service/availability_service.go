package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type availabilityRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.DailyAvailability, error)
	Upsert(ctx context.Context, entry *models.DailyAvailability) (*models.DailyAvailability, error)
}

// AvailabilityService manages the owner's weekly availability table.
type AvailabilityService struct {
	repo      availabilityRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(repo availabilityRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's availability entries ordered by weekday.
func (s *AvailabilityService) List(ctx context.Context, ownerID string) ([]models.DailyAvailability, error) {
	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return entries, nil
}

// Upsert sets the hours for one weekday, replacing any existing entry.
func (s *AvailabilityService) Upsert(ctx context.Context, ownerID string, req dto.UpsertAvailabilityRequest) (*models.DailyAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	entry := &models.DailyAvailability{
		DayOfWeek:      req.DayOfWeek,
		AvailableHours: req.AvailableHours,
		OwnerID:        ownerID,
	}
	stored, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save availability")
	}
	return stored, nil
}

// UpsertBulk replaces the provided weekdays in one call. Entries are applied
// in order; a duplicated weekday keeps the last value.
func (s *AvailabilityService) UpsertBulk(ctx context.Context, ownerID string, req dto.BulkAvailabilityRequest) ([]models.DailyAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	for _, item := range req.Entries {
		entry := &models.DailyAvailability{
			DayOfWeek:      item.DayOfWeek,
			AvailableHours: item.AvailableHours,
			OwnerID:        ownerID,
		}
		if _, err := s.repo.Upsert(ctx, entry); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to save availability for day %d", item.DayOfWeek))
		}
	}
	return s.List(ctx, ownerID)
}
