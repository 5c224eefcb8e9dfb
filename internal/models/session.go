package models

import "time"

// StudySession is a dated, duration-bounded block of study time for one
// subject. Sessions carry a calendar date only, no time of day. The ID is
// derived from (subject, date) so regenerating a plan yields stable
// identifiers.
type StudySession struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Date      time.Time `db:"date" json:"date"`
	Duration  int       `db:"duration_minutes" json:"duration"`
	Completed bool      `db:"completed" json:"completed"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter narrows session listings to a date window.
type SessionFilter struct {
	From      *time.Time
	To        *time.Time
	SubjectID string
	Completed *bool
}
