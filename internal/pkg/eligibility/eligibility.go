// Package eligibility computes the donor cooldown after a recorded donation.
package eligibility

import (
	"time"

	"github.com/bloodcamp-api/internal/domain"
)

// CooldownDays is the number of whole days a donor waits between donations.
const CooldownDays = 90

const day = 24 * time.Hour

// Result is the eligibility snapshot for one donor at one instant.
type Result struct {
	Eligible      bool `json:"is_eligible_for_donation"`
	DaysRemaining int  `json:"days_until_eligible"`
}

// elapsedDays is floor((now - last) / 1 day).
func elapsedDays(last, now time.Time) int {
	d := now.Sub(last)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// Eligible reports whether a donor whose last donation was at last may donate at now.
// A donor who never donated is eligible.
func Eligible(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return elapsedDays(*last, now) >= CooldownDays
}

// DaysUntilEligible returns the whole days left in the cooldown, 0 once eligible.
func DaysUntilEligible(last *time.Time, now time.Time) int {
	if Eligible(last, now) {
		return 0
	}
	return CooldownDays - elapsedDays(*last, now)
}

// Evaluate combines Eligible and DaysUntilEligible.
func Evaluate(last *time.Time, now time.Time) Result {
	return Result{Eligible: Eligible(last, now), DaysRemaining: DaysUntilEligible(last, now)}
}

// Cutoff is the latest last-donation instant that is eligible at now.
func Cutoff(now time.Time) time.Time {
	return now.Add(-CooldownDays * day)
}

// RecordDonation marks a donation at now. Callers persisting the change must
// guard it against concurrent recordings for the same donor.
func RecordDonation(d *domain.Donor, now time.Time) {
	t := now
	d.LastDonation = &t
	d.DonationCount++
}
