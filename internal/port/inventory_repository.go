package port

import (
	"context"
	"time"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

// InventoryRepository is the authoritative store for donation records and
// the per-type stock counters. Every mutating method runs as one database
// transaction: the ledger write and the counter update commit together or
// not at all.
type InventoryRepository interface {
	// RecordDonation resolves the donor's blood type, inserts the donation
	// and increments the counter for that type. Returns the stored record
	// with the resolved type filled in.
	RecordDonation(ctx context.Context, rec domain.DonationRecord) (domain.DonationRecord, error)

	// DispatchUnit decrements the counter for bloodType if it is positive.
	// Returns domain.ErrInsufficientStock when the count is already zero.
	DispatchUnit(ctx context.Context, bloodType domain.BloodType) error

	// DisposeDonation deletes the donation row and decrements the counter,
	// floored at zero.
	DisposeDonation(ctx context.Context, donationID string, bloodType domain.BloodType) error

	// StockLevels returns the counter for every blood type.
	StockLevels(ctx context.Context) ([]domain.StockLevel, error)

	// StockLevel returns the counter for one blood type.
	StockLevel(ctx context.Context, bloodType domain.BloodType) (int, error)

	// StockBelow returns the types whose counter is under threshold.
	StockBelow(ctx context.Context, threshold int) ([]domain.StockLevel, error)

	// ExpiringDonations returns live donations with expiry on or before
	// cutoff, joined with the donor's name, ordered by expiry ascending.
	ExpiringDonations(ctx context.Context, cutoff time.Time) ([]domain.ExpiringUnit, error)
}
