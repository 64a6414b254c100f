package port

import (
	"context"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

// DonorRepository is the donor directory consumed by the inventory engine
// and exposed to the presentation layer.
type DonorRepository interface {
	CreateDonor(ctx context.Context, d domain.Donor) (int64, error)

	GetDonor(ctx context.Context, id int64) (*domain.Donor, error)

	// ListDonors returns all donors, newest first.
	ListDonors(ctx context.Context) ([]domain.Donor, error)

	// SearchDonors matches donors whose name contains q, capped at limit.
	SearchDonors(ctx context.Context, q string, limit int) ([]domain.Donor, error)

	UpdateDonor(ctx context.Context, d domain.Donor) error

	DeleteDonor(ctx context.Context, id int64) error
}
