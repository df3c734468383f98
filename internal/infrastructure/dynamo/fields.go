package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable        = "enable"
	fieldIsActive      = "is_active"
	fieldUpdatedAt     = "updated_at"
	fieldOTP           = "otp"
	fieldVerified      = "verified"
	fieldEmailVerified = "email_verified"
	fieldStatus        = "status"
	fieldReviewedBy    = "reviewed_by"
	fieldReviewedAt    = "reviewed_at"
	fieldRole          = "role"
	fieldLastDonation  = "last_donation"
	fieldDonationCount = "donation_count"
	fieldVersion       = "version"
	fieldAttachments   = "attachments"
)
