package domain

import "time"

// Admin roles. A "main" admin is the super admin.
const (
	AdminRoleNormal = "normal"
	AdminRoleMain   = "main"
)

// Admin is a promoted administrator account. Admins authenticate by password
// only and never carry an OTP challenge.
type Admin struct {
	AdminID      string    `json:"id" dynamodbav:"admin_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	RollNo       string    `json:"roll_no" dynamodbav:"roll_no"`
	Branch       string    `json:"branch" dynamodbav:"branch"`
	Year         int       `json:"year" dynamodbav:"year"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Enable       bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=normal main"`
}
