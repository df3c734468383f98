package domain

import "time"

// Admin request statuses. Transitions are pending->approved or pending->rejected only.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// AdminRequest is a provisional admin account awaiting review.
type AdminRequest struct {
	RequestID     string        `json:"id" dynamodbav:"request_id"`
	Name          string        `json:"name" dynamodbav:"name"`
	Email         string        `json:"email" dynamodbav:"email"`
	RollNo        string        `json:"roll_no" dynamodbav:"roll_no"`
	Branch        string        `json:"branch" dynamodbav:"branch"`
	Year          int           `json:"year" dynamodbav:"year"`
	Phone         string        `json:"phone" dynamodbav:"phone"`
	PasswordHash  string        `json:"-" dynamodbav:"password_hash"`
	Status        string        `json:"status" dynamodbav:"status"`
	EmailVerified bool          `json:"email_verified" dynamodbav:"email_verified"`
	OTP           *OTPChallenge `json:"-" dynamodbav:"otp,omitempty"`
	ReviewedBy    *string       `json:"reviewed_by,omitempty" dynamodbav:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty" dynamodbav:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time     `json:"updated" dynamodbav:"updated_at"`
}

func (r *AdminRequest) Challenge() *OTPChallenge     { return r.OTP }
func (r *AdminRequest) SetChallenge(c *OTPChallenge) { r.OTP = c }

// ProfileComplete reports whether every field needed to create the admin account is set.
func (r *AdminRequest) ProfileComplete() bool {
	return r.Name != "" && r.Email != "" && r.RollNo != "" && r.Branch != "" &&
		r.Year > 0 && r.Phone != "" && r.PasswordHash != ""
}

type SubmitAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	RollNo   string `json:"roll_no" validate:"required,max=32"`
	Branch   string `json:"branch" validate:"required,max=64"`
	Year     int    `json:"year" validate:"required,min=1,max=6"`
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
