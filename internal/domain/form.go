package domain

import "time"

// Form is a registration form for a donation camp. Link points at the
// external form the donor fills in.
type Form struct {
	FormID      string       `json:"id" dynamodbav:"form_id"`
	Title       string       `json:"title" dynamodbav:"title"`
	Description string       `json:"description" dynamodbav:"description"`
	Link        string       `json:"link" dynamodbav:"link"`
	Deadline    *time.Time   `json:"deadline,omitempty" dynamodbav:"deadline,omitempty"`
	Attachments []Attachment `json:"attachments" dynamodbav:"attachments"`
	IsActive    bool         `json:"is_active" dynamodbav:"is_active"`
	CreatedBy   string       `json:"created_by" dynamodbav:"created_by"`
	CreatedAt   time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time    `json:"updated" dynamodbav:"updated_at"`
}

// IsOpen reports whether the form still accepts registrations at now.
func (f *Form) IsOpen(now time.Time) bool {
	return f.IsActive && (f.Deadline == nil || !now.After(*f.Deadline))
}

type FormInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	Link        string  `json:"link" validate:"required,url"`
	Deadline    *string `json:"deadline"` // RFC3339 or YYYY-MM-DD
}

type UpdateFormRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Link        *string `json:"link" validate:"omitempty,url"`
	Deadline    *string `json:"deadline"`
}
