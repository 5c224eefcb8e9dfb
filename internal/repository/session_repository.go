package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studyflow/studyflow-api/internal/models"
)

// SessionRepository handles persistence for study sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns the owner's sessions, optionally windowed by date, ordered by
// date then subject.
func (r *SessionRepository) List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error) {
	base := "SELECT id, subject_id, date, duration_minutes, completed, owner_id, created_at, updated_at FROM study_sessions WHERE owner_id = $1"
	args := []interface{}{ownerID}

	if filter.From != nil {
		base += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND date < $%d", len(args)+1)
		args = append(args, *filter.To)
	}
	if filter.SubjectID != "" {
		base += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.Completed != nil {
		base += fmt.Sprintf(" AND completed = $%d", len(args)+1)
		args = append(args, *filter.Completed)
	}
	base += " ORDER BY date ASC, subject_id ASC"

	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, base, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID returns the owner's session by id.
func (r *SessionRepository) FindByID(ctx context.Context, ownerID, id string) (*models.StudySession, error) {
	const query = `SELECT id, subject_id, date, duration_minutes, completed, owner_id, created_at, updated_at FROM study_sessions WHERE id = $1 AND owner_id = $2`
	var session models.StudySession
	if err := r.db.GetContext(ctx, &session, query, id, ownerID); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListCompletedIDs returns the ids of completed sessions in the window.
// Generation uses this to avoid overwriting work the owner already logged.
func (r *SessionRepository) ListCompletedIDs(ctx context.Context, ownerID string, from, to time.Time) ([]string, error) {
	const query = `SELECT id FROM study_sessions WHERE owner_id = $1 AND completed = TRUE AND date >= $2 AND date < $3`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, ownerID, from, to); err != nil {
		return nil, fmt.Errorf("list completed session ids: %w", err)
	}
	return ids, nil
}

// UpsertBatch writes generated sessions keyed by their deterministic id.
// An existing row is overwritten unless it was completed; the WHERE guard
// keeps logged work intact even if the caller's completed-set is stale.
func (r *SessionRepository) UpsertBatch(ctx context.Context, sessions []models.StudySession) error {
	if len(sessions) == 0 {
		return nil
	}
	const query = `INSERT INTO study_sessions (id, subject_id, date, duration_minutes, completed, owner_id, created_at, updated_at)
        VALUES (:id, :subject_id, :date, :duration_minutes, :completed, :owner_id, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, duration_minutes = EXCLUDED.duration_minutes, updated_at = EXCLUDED.updated_at
        WHERE study_sessions.completed = FALSE`

	now := time.Now().UTC()
	for i := range sessions {
		if sessions[i].CreatedAt.IsZero() {
			sessions[i].CreatedAt = now
		}
		sessions[i].UpdatedAt = now
	}
	if _, err := r.db.NamedExecContext(ctx, query, sessions); err != nil {
		return fmt.Errorf("upsert sessions: %w", err)
	}
	return nil
}

// Update modifies a session's date and duration.
func (r *SessionRepository) Update(ctx context.Context, session *models.StudySession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE study_sessions SET date = :date, duration_minutes = :duration_minutes, updated_at = :updated_at WHERE id = :id AND owner_id = :owner_id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// MarkCompleted flags a session as done.
func (r *SessionRepository) MarkCompleted(ctx context.Context, ownerID, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE study_sessions SET completed = TRUE, updated_at = $3 WHERE id = $1 AND owner_id = $2`, id, ownerID, ts); err != nil {
		return fmt.Errorf("mark session completed: %w", err)
	}
	return nil
}

// Delete removes the owner's session.
func (r *SessionRepository) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CompletionStats counts sessions and completed sessions for the owner.
func (r *SessionRepository) CompletionStats(ctx context.Context, ownerID string) (total int, completed int, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM study_sessions WHERE owner_id = $1`
	row := r.db.QueryRowxContext(ctx, query, ownerID)
	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("session completion stats: %w", err)
	}
	return total, completed, nil
}
