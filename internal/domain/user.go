package domain

import "time"

// User is a public end user. Users prove control of their email with an OTP
// before they can log in.
type User struct {
	UserID       string        `json:"id" dynamodbav:"user_id"`
	Name         string        `json:"name" dynamodbav:"name"`
	Email        string        `json:"email" dynamodbav:"email"`
	PasswordHash string        `json:"-" dynamodbav:"password_hash"`
	Verified     bool          `json:"verified" dynamodbav:"verified"`
	OTP          *OTPChallenge `json:"-" dynamodbav:"otp,omitempty"`
	Enable       bool          `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time     `json:"updated" dynamodbav:"updated_at"`
}

func (u *User) Challenge() *OTPChallenge     { return u.OTP }
func (u *User) SetChallenge(c *OTPChallenge) { u.OTP = c }

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}
