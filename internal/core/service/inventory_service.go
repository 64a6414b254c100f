package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
	"github.com/dgarcia9/blood-bank/internal/port"
)

// InventoryService is the inventory consistency engine. Every mutating
// operation checks the caller's role first, validates input second, and only
// then touches the store; the repository runs the actual transaction. The
// cache is advisory: a refresh failure is logged, never surfaced.
type InventoryService struct {
	repo   port.InventoryRepository
	cache  port.CacheRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewInventoryService(repo port.InventoryRepository, cache port.CacheRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// RecordDonation stores one collected unit and bumps the donor's blood type
// counter. The blood type is resolved from the donor row inside the store
// transaction; an unknown donor leaves both tables untouched.
func (s *InventoryService) RecordDonation(ctx context.Context, role domain.Role, requestID string, donorID int64, volumeML int, expiryDate time.Time) (domain.DonationRecord, error) {
	if !role.CanMutateInventory() {
		return domain.DonationRecord{}, fmt.Errorf("%w: record donation as %s", domain.ErrUnauthorized, role)
	}
	if donorID <= 0 {
		return domain.DonationRecord{}, fmt.Errorf("%w: donor id %d", domain.ErrValidation, donorID)
	}
	if volumeML <= 0 {
		return domain.DonationRecord{}, fmt.Errorf("%w: volume %d ml", domain.ErrValidation, volumeML)
	}
	collectedAt := s.now()
	if beforeDate(expiryDate, collectedAt) {
		return domain.DonationRecord{}, fmt.Errorf("%w: expiry %s before collection date", domain.ErrValidation, expiryDate.Format("2006-01-02"))
	}

	if err := s.checkIdempotency(ctx, "donation:"+requestID); err != nil {
		return domain.DonationRecord{}, err
	}

	rec := domain.DonationRecord{
		ID:         uuid.NewString(),
		DonorID:    donorID,
		VolumeML:   volumeML,
		ExpiryDate: expiryDate,
		CreatedAt:  collectedAt,
	}

	stored, err := s.repo.RecordDonation(ctx, rec)
	if err != nil {
		s.releaseIdempotency(ctx, "donation:"+requestID)
		return domain.DonationRecord{}, err
	}

	s.logger.Info("donation recorded",
		zap.String("donation_id", stored.ID),
		zap.Int64("donor_id", stored.DonorID),
		zap.String("blood_type", string(stored.BloodType)),
		zap.Int("volume_ml", stored.VolumeML),
	)
	s.refreshStockCache(ctx, stored.BloodType)
	return stored, nil
}

// DispatchUnit consumes one unit of the given type for transfusion. The
// decrement is conditional on a positive count, so repeated calls at zero
// stock report ErrInsufficientStock without changing state.
func (s *InventoryService) DispatchUnit(ctx context.Context, role domain.Role, requestID string, bloodType domain.BloodType) error {
	if !role.CanMutateInventory() {
		return fmt.Errorf("%w: dispatch as %s", domain.ErrUnauthorized, role)
	}
	if !bloodType.Valid() {
		return fmt.Errorf("%w: blood type %q", domain.ErrValidation, bloodType)
	}

	if err := s.checkIdempotency(ctx, "dispatch:"+requestID); err != nil {
		return err
	}

	if err := s.repo.DispatchUnit(ctx, bloodType); err != nil {
		s.releaseIdempotency(ctx, "dispatch:"+requestID)
		return err
	}

	s.logger.Info("unit dispatched", zap.String("blood_type", string(bloodType)))
	s.refreshStockCache(ctx, bloodType)
	return nil
}

// DisposeExpiredUnit removes an expired donation from the ledger and
// decrements the counter, floored at zero, in one transaction.
func (s *InventoryService) DisposeExpiredUnit(ctx context.Context, role domain.Role, donationID string, bloodType domain.BloodType) error {
	if !role.CanMutateInventory() {
		return fmt.Errorf("%w: dispose as %s", domain.ErrUnauthorized, role)
	}
	if donationID == "" {
		return fmt.Errorf("%w: empty donation id", domain.ErrValidation)
	}
	if !bloodType.Valid() {
		return fmt.Errorf("%w: blood type %q", domain.ErrValidation, bloodType)
	}

	if err := s.repo.DisposeDonation(ctx, donationID, bloodType); err != nil {
		return err
	}

	s.logger.Info("expired unit disposed",
		zap.String("donation_id", donationID),
		zap.String("blood_type", string(bloodType)),
	)
	s.refreshStockCache(ctx, bloodType)
	return nil
}

// StockLevels serves reads from the cache snapshot when it covers all 8
// types, otherwise from the store, backfilling the cache on the way out.
func (s *InventoryService) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	if snapshot, err := s.cache.StockSnapshot(ctx); err == nil && len(snapshot) == len(domain.AllBloodTypes()) {
		levels := make([]domain.StockLevel, 0, len(snapshot))
		for _, bt := range domain.AllBloodTypes() {
			levels = append(levels, domain.StockLevel{BloodType: bt, Units: snapshot[bt]})
		}
		return levels, nil
	}

	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	for _, lvl := range levels {
		if err := s.cache.SetStock(ctx, lvl.BloodType, lvl.Units); err != nil {
			s.logger.Warn("stock cache backfill failed", zap.String("blood_type", string(lvl.BloodType)), zap.Error(err))
			break
		}
	}
	return levels, nil
}

func (s *InventoryService) checkIdempotency(ctx context.Context, key string) error {
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	return nil
}

// releaseIdempotency frees a consumed request id after a failed transaction,
// so a legitimate retry is not reported as a duplicate. Best effort: if the
// clear fails the key still expires with its TTL.
func (s *InventoryService) releaseIdempotency(ctx context.Context, key string) {
	if err := s.cache.ClearIdempotency(ctx, key); err != nil {
		s.logger.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *InventoryService) refreshStockCache(ctx context.Context, bloodType domain.BloodType) {
	units, err := s.repo.StockLevel(ctx, bloodType)
	if err == nil {
		err = s.cache.SetStock(ctx, bloodType, units)
	}
	if err != nil {
		s.logger.Warn("stock cache refresh failed", zap.String("blood_type", string(bloodType)), zap.Error(err))
	}
}

// dateOf truncates t to its calendar date, keeping its location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// beforeDate reports whether a's calendar date precedes b's. Each time is
// read in its own location, so a DATE column scanned at UTC midnight and a
// server-local clock compare by day, never by instant.
func beforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
