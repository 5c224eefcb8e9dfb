package dto

// CreateSubjectRequest adds a subject to the caller's plan. Color is
// optional; when omitted the service assigns one from the palette.
type CreateSubjectRequest struct {
	Name                string  `json:"name" validate:"required,max=120"`
	ExamDate            string  `json:"examDate" validate:"required,datetime=2006-01-02"`
	Priority            string  `json:"priority" validate:"required,oneof=low medium high"`
	EstimatedStudyHours float64 `json:"estimatedStudyHours" validate:"required,gt=0,lte=500"`
	Color               string  `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateSubjectRequest edits a subject. Nil fields are left untouched.
type UpdateSubjectRequest struct {
	Name                *string  `json:"name" validate:"omitempty,max=120"`
	ExamDate            *string  `json:"examDate" validate:"omitempty,datetime=2006-01-02"`
	Priority            *string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	EstimatedStudyHours *float64 `json:"estimatedStudyHours" validate:"omitempty,gt=0,lte=500"`
	Color               *string  `json:"color" validate:"omitempty,hexcolor"`
}
