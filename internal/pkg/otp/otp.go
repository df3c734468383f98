// Package otp implements the one-time passcode lifecycle shared by users and
// admin requests. Codes are six digits and stay valid for five minutes; expiry
// is checked lazily at verify time.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/bloodcamp-api/internal/domain"
)

const (
	// TTL is how long an issued code stays valid.
	TTL = 5 * time.Minute
	// MaxAttempts is how many wrong guesses a challenge absorbs before it is
	// refused outright. A fresh code resets the count.
	MaxAttempts = 5

	codeMin  = 100000
	codeSpan = 900000 // codes fall in [100000, 999999]
)

// Holder is an entity that owns at most one active challenge.
type Holder interface {
	Challenge() *domain.OTPChallenge
	SetChallenge(c *domain.OTPChallenge)
}

// NewCode draws a uniformly random six digit code. It never has a leading zero.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

// Generate stores a fresh challenge on h, replacing any previous one, and
// returns the code for out-of-band delivery. Persisting h is the caller's job.
func Generate(h Holder, now time.Time) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	h.SetChallenge(&domain.OTPChallenge{Code: code, ExpiresAt: now.Add(TTL)})
	return code, nil
}

// Verify reports whether candidate matches the active challenge at now.
// It fails closed and does not consume the challenge.
func Verify(h Holder, candidate string, now time.Time) bool {
	c := h.Challenge()
	if c == nil || c.Code == "" {
		return false
	}
	if c.Expired(now) || c.Attempts >= MaxAttempts {
		return false
	}
	return c.Code == candidate
}

// Clear consumes the active challenge.
func Clear(h Holder) {
	h.SetChallenge(nil)
}

// ErrMismatch marks a wrong guess against a live challenge. It wraps
// domain.ErrUnauthorized; callers count it towards MaxAttempts.
var ErrMismatch = fmt.Errorf("invalid verification code: %w", domain.ErrUnauthorized)

// Check is Verify with a reason: nil on success, otherwise an error wrapping
// domain.ErrBadRequest (no code issued), domain.ErrExpired, domain.ErrForbidden
// (attempts exhausted) or ErrMismatch.
func Check(h Holder, candidate string, now time.Time) error {
	if Verify(h, candidate, now) {
		return nil
	}
	c := h.Challenge()
	switch {
	case c == nil || c.Code == "":
		return fmt.Errorf("no verification code requested: %w", domain.ErrBadRequest)
	case c.Expired(now):
		return fmt.Errorf("verification code expired: %w", domain.ErrExpired)
	case c.Attempts >= MaxAttempts:
		return fmt.Errorf("too many failed attempts, request a new code: %w", domain.ErrForbidden)
	default:
		return ErrMismatch
	}
}
