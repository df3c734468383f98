package domain

import "time"

// OTPChallenge is a one-time passcode attached to its owning entity.
// It lives inside the owner's document and is overwritten in place.
type OTPChallenge struct {
	Code      string    `json:"-" dynamodbav:"code"`
	ExpiresAt time.Time `json:"-" dynamodbav:"expires_at"`
	Attempts  int       `json:"-" dynamodbav:"attempts"` // failed verifications so far
}

// Expired reports whether now is strictly past the expiry instant.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
