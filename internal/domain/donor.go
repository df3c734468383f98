package domain

import "time"

// Donor age bounds. Request validation accepts DonorMinAgeRequest and up;
// the service additionally enforces the configured record minimum
// (config.DonorMinAge, 18 by default) before anything is persisted.
const (
	DonorMinAgeRequest = 16
	DonorMinAgeRecord  = 18
	DonorMaxAge        = 65
)

// BloodGroups lists every accepted blood group token.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ValidBloodGroup reports whether g is one of BloodGroups.
func ValidBloodGroup(g string) bool {
	for _, bg := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

type Donor struct {
	DonorID       string     `json:"id" dynamodbav:"donor_id"`
	Name          string     `json:"name" dynamodbav:"name"`
	Email         string     `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone         string     `json:"phone" dynamodbav:"phone"`
	BloodGroup    string     `json:"blood_group" dynamodbav:"blood_group"`
	Age           int        `json:"age" dynamodbav:"age"`
	Gender        string     `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	RollNo        string     `json:"roll_no,omitempty" dynamodbav:"roll_no,omitempty"`
	Branch        string     `json:"branch,omitempty" dynamodbav:"branch,omitempty"`
	Year          int        `json:"year,omitempty" dynamodbav:"year,omitempty"`
	LastDonation  *time.Time `json:"last_donation,omitempty" dynamodbav:"last_donation,omitempty,unixtime"`
	DonationCount int        `json:"donation_count" dynamodbav:"donation_count"`
	IsActive      bool       `json:"is_active" dynamodbav:"is_active"`
	Version       int64      `json:"-" dynamodbav:"version"`
	CreatedBy     string     `json:"created_by" dynamodbav:"created_by"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateDonorRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone" validate:"required,min=7,max=16"`
	BloodGroup   string  `json:"blood_group" validate:"required,bloodgroup"`
	Age          int     `json:"age" validate:"required,min=16,max=65"`
	Gender       string  `json:"gender" validate:"omitempty,oneof=male female other"`
	RollNo       string  `json:"roll_no" validate:"omitempty,max=32"`
	Branch       string  `json:"branch" validate:"omitempty,max=64"`
	Year         int     `json:"year" validate:"omitempty,min=1,max=6"`
	LastDonation *string `json:"last_donation"` // expected format: YYYY-MM-DD
}

type UpdateDonorRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,min=7,max=16"`
	BloodGroup *string `json:"blood_group" validate:"omitempty,bloodgroup"`
	Age        *int    `json:"age" validate:"omitempty,min=16,max=65"`
	Gender     *string `json:"gender" validate:"omitempty,oneof=male female other"`
	RollNo     *string `json:"roll_no" validate:"omitempty,max=32"`
	Branch     *string `json:"branch" validate:"omitempty,max=64"`
	Year       *int    `json:"year" validate:"omitempty,min=1,max=6"`
}

// DonorFilter narrows donor listings.
type DonorFilter struct {
	BloodGroup   string
	EligibleOnly bool
}
