package domain

import "time"

// DonationRecord is one collected blood unit. The blood type is always the
// donor's stored type at collection time, never caller-supplied. Records are
// immutable after insert and removed only by disposal.
type DonationRecord struct {
	ID         string
	DonorID    int64
	BloodType  BloodType
	VolumeML   int
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// StockLevel is the authoritative unit count for one blood type.
type StockLevel struct {
	BloodType BloodType
	Units     int
}
