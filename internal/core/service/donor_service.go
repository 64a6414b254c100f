package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
	"github.com/dgarcia9/blood-bank/internal/port"
)

const searchLimit = 10

// DonorService is the donor directory: thin validation over the repository.
type DonorService struct {
	repo   port.DonorRepository
	logger *zap.Logger
}

func NewDonorService(repo port.DonorRepository, logger *zap.Logger) *DonorService {
	return &DonorService{repo: repo, logger: logger}
}

func (s *DonorService) CreateDonor(ctx context.Context, d domain.Donor) (int64, error) {
	if err := validateDonor(d); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateDonor(ctx, d)
	if err != nil {
		return 0, err
	}

	s.logger.Info("donor created", zap.Int64("donor_id", id), zap.String("blood_type", string(d.BloodType)))
	return id, nil
}

func (s *DonorService) GetDonor(ctx context.Context, id int64) (*domain.Donor, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: donor id %d", domain.ErrValidation, id)
	}
	return s.repo.GetDonor(ctx, id)
}

// ListDonors returns all donors, or a name search capped at 10 matches
// when q is non-empty.
func (s *DonorService) ListDonors(ctx context.Context, q string) ([]domain.Donor, error) {
	if q = strings.TrimSpace(q); q != "" {
		return s.repo.SearchDonors(ctx, q, searchLimit)
	}
	return s.repo.ListDonors(ctx)
}

func (s *DonorService) UpdateDonor(ctx context.Context, d domain.Donor) error {
	if d.ID <= 0 {
		return fmt.Errorf("%w: donor id %d", domain.ErrValidation, d.ID)
	}
	if err := validateDonor(d); err != nil {
		return err
	}
	return s.repo.UpdateDonor(ctx, d)
}

// DeleteDonor removes a directory entry. Admin only, matching the original
// access rules; donation history for the donor is not touched.
func (s *DonorService) DeleteDonor(ctx context.Context, role domain.Role, id int64) error {
	if !role.CanDeleteDonors() {
		return fmt.Errorf("%w: delete donor as %s", domain.ErrUnauthorized, role)
	}
	if id <= 0 {
		return fmt.Errorf("%w: donor id %d", domain.ErrValidation, id)
	}

	if err := s.repo.DeleteDonor(ctx, id); err != nil {
		return err
	}

	s.logger.Info("donor deleted", zap.Int64("donor_id", id))
	return nil
}

func validateDonor(d domain.Donor) error {
	if strings.TrimSpace(d.FullName) == "" {
		return fmt.Errorf("%w: empty donor name", domain.ErrValidation)
	}
	if d.Age <= 0 || d.Age > 120 {
		return fmt.Errorf("%w: age %d", domain.ErrValidation, d.Age)
	}
	if d.WeightKg <= 0 {
		return fmt.Errorf("%w: weight %.1f kg", domain.ErrValidation, d.WeightKg)
	}
	if !d.BloodType.Valid() {
		return fmt.Errorf("%w: blood type %q", domain.ErrValidation, d.BloodType)
	}
	return nil
}
