package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyflow/studyflow-api/internal/models"
)

// SubjectRepository handles persistence for subjects. Every query is scoped
// to an owner; a subject is never visible across accounts.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns the owner's subjects matching filters with pagination metadata.
func (r *SubjectRepository) List(ctx context.Context, ownerID string, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE owner_id = $1"
	args := []interface{}{ownerID}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"exam_date":  true,
		"priority":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "exam_date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, exam_date, priority, estimated_study_hours, color, owner_id, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	return subjects, total, nil
}

// ListByOwner returns every subject belonging to the owner, ordered by exam
// date. Used by the planner, which needs the complete snapshot.
func (r *SubjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error) {
	const query = `SELECT id, name, exam_date, priority, estimated_study_hours, color, owner_id, created_at, updated_at FROM subjects WHERE owner_id = $1 ORDER BY exam_date ASC, created_at ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, ownerID); err != nil {
		return nil, fmt.Errorf("list subjects by owner: %w", err)
	}
	return subjects, nil
}

// FindByID returns the owner's subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Subject, error) {
	const query = `SELECT id, name, exam_date, priority, estimated_study_hours, color, owner_id, created_at, updated_at FROM subjects WHERE id = $1 AND owner_id = $2`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id, ownerID); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, exam_date, priority, estimated_study_hours, color, owner_id, created_at, updated_at) VALUES (:id, :name, :exam_date, :priority, :estimated_study_hours, :color, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, exam_date = :exam_date, priority = :priority, estimated_study_hours = :estimated_study_hours, color = :color, updated_at = :updated_at WHERE id = :id AND owner_id = :owner_id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes the owner's subject and its generated sessions.
func (r *SubjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE subject_id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("delete subject sessions: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}
