package dto

import "github.com/studyflow/studyflow-api/internal/models"

// GenerateScheduleRequest triggers plan generation for the caller. A zero
// StartDate defaults to today; Commit persists the proposal instead of just
// previewing it.
type GenerateScheduleRequest struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	Commit    bool   `json:"commit"`
}

// GenerateScheduleResponse returns the proposed sessions and, when
// committed, how the proposal was merged with stored sessions.
type GenerateScheduleResponse struct {
	StartDate        string                `json:"startDate"`
	HorizonDays      int                   `json:"horizonDays"`
	Sessions         []models.StudySession `json:"sessions"`
	Committed        bool                  `json:"committed"`
	Persisted        int                   `json:"persisted"`
	SkippedCompleted int                   `json:"skippedCompleted"`
}

// UpdateSessionRequest edits a stored session.
type UpdateSessionRequest struct {
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Duration int    `json:"duration" validate:"omitempty,min=1,max=720"`
}
