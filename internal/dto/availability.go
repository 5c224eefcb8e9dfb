package dto

// UpsertAvailabilityRequest sets the study hours for one weekday.
// DayOfWeek follows time.Weekday numbering: 0=Sunday..6=Saturday.
type UpsertAvailabilityRequest struct {
	DayOfWeek      int     `json:"dayOfWeek" validate:"min=0,max=6"`
	AvailableHours float64 `json:"availableHours" validate:"min=0,max=12"`
}

// BulkAvailabilityRequest replaces the weekly availability in one call.
type BulkAvailabilityRequest struct {
	Entries []UpsertAvailabilityRequest `json:"entries" validate:"required,min=1,max=7,dive"`
}
