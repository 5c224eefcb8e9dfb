package models

import "time"

// DailyAvailability records how many hours the owner can study on a given
// weekday. Day of week follows time.Weekday numbering: 0=Sunday..6=Saturday.
// At most one row per (owner, day_of_week); a missing row means zero hours.
type DailyAvailability struct {
	ID             string    `db:"id" json:"id"`
	DayOfWeek      int       `db:"day_of_week" json:"day_of_week"`
	AvailableHours float64   `db:"available_hours" json:"available_hours"`
	OwnerID        string    `db:"owner_id" json:"owner_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
