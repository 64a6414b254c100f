package domain

import "time"

type ExpirySeverity string

const (
	SeverityExpired      ExpirySeverity = "EXPIRED"
	SeverityExpiringSoon ExpirySeverity = "EXPIRING_SOON"
)

// ScarcityAlert marks a blood type whose stock fell below the configured
// low-stock threshold.
type ScarcityAlert struct {
	BloodType BloodType
	Units     int
	Threshold int
}

// ExpiryAlert marks a live donation at or past the expiry lookahead window.
type ExpiryAlert struct {
	DonationID string
	BloodType  BloodType
	DonorName  string
	ExpiryDate time.Time
	Severity   ExpirySeverity
}

// ExpiringUnit is the raw store row an ExpiryAlert is derived from.
type ExpiringUnit struct {
	DonationID string
	BloodType  BloodType
	DonorName  string
	ExpiryDate time.Time
}
