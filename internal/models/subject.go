package models

import "time"

// SubjectPriority weights a subject relative to others sitting the same exam window.
type SubjectPriority string

const (
	PriorityLow    SubjectPriority = "low"
	PriorityMedium SubjectPriority = "medium"
	PriorityHigh   SubjectPriority = "high"
)

// Weight returns the numeric multiplier used by the allocation engine.
// The mapping is deliberately centralized here; scheduling behaviour
// depends on these exact values.
func (p SubjectPriority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1.5
	default:
		return 1
	}
}

// Valid reports whether the priority is one of the closed set.
func (p SubjectPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Subject is an exam the owner is preparing for.
type Subject struct {
	ID                  string          `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	ExamDate            time.Time       `db:"exam_date" json:"exam_date"`
	Priority            SubjectPriority `db:"priority" json:"priority"`
	EstimatedStudyHours float64         `db:"estimated_study_hours" json:"estimated_study_hours"`
	Color               string          `db:"color" json:"color"`
	OwnerID             string          `db:"owner_id" json:"owner_id"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
