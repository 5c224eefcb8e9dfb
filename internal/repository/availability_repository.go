package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyflow/studyflow-api/internal/models"
)

// AvailabilityRepository handles persistence for weekly availability rows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new repository instance.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByOwner returns the owner's availability entries ordered by weekday.
func (r *AvailabilityRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.DailyAvailability, error) {
	const query = `SELECT id, day_of_week, available_hours, owner_id, created_at, updated_at FROM daily_availability WHERE owner_id = $1 ORDER BY day_of_week ASC`
	var entries []models.DailyAvailability
	if err := r.db.SelectContext(ctx, &entries, query, ownerID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return entries, nil
}

// Upsert sets the hours for one (owner, weekday) pair, relying on the unique
// constraint over them. On conflict the stored row keeps its original id, so
// the persisted row is read back via RETURNING.
func (r *AvailabilityRepository) Upsert(ctx context.Context, entry *models.DailyAvailability) (*models.DailyAvailability, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO daily_availability (id, day_of_week, available_hours, owner_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (owner_id, day_of_week) DO UPDATE SET available_hours = EXCLUDED.available_hours, updated_at = EXCLUDED.updated_at
        RETURNING id, day_of_week, available_hours, owner_id, created_at, updated_at`
	var stored models.DailyAvailability
	if err := r.db.GetContext(ctx, &stored, query, entry.ID, entry.DayOfWeek, entry.AvailableHours, entry.OwnerID, entry.CreatedAt, entry.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}
	return &stored, nil
}
