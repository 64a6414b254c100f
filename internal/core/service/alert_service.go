package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
	"github.com/dgarcia9/blood-bank/internal/port"
)

const (
	DefaultScarcityThreshold = 5
	DefaultExpiryLookahead   = 7 // days
)

// AlertService derives scarcity and expiry alerts from current store state.
// It never mutates anything and recomputes on every call; results may be
// stale the moment they are returned, which callers tolerate.
type AlertService struct {
	repo      port.InventoryRepository
	threshold int
	lookahead int
	logger    *zap.Logger
	now       func() time.Time
}

func NewAlertService(repo port.InventoryRepository, threshold, lookaheadDays int, logger *zap.Logger) *AlertService {
	if threshold <= 0 {
		threshold = DefaultScarcityThreshold
	}
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultExpiryLookahead
	}
	return &AlertService{
		repo:      repo,
		threshold: threshold,
		lookahead: lookaheadDays,
		logger:    logger,
		now:       time.Now,
	}
}

// ScarcityScan returns the blood types whose stock is under the threshold.
func (s *AlertService) ScarcityScan(ctx context.Context) ([]domain.ScarcityAlert, error) {
	levels, err := s.repo.StockBelow(ctx, s.threshold)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.ScarcityAlert, 0, len(levels))
	for _, lvl := range levels {
		alerts = append(alerts, domain.ScarcityAlert{
			BloodType: lvl.BloodType,
			Units:     lvl.Units,
			Threshold: s.threshold,
		})
	}
	return alerts, nil
}

// ExpiryScan returns live donations expiring within the lookahead window,
// oldest expiry first. Severity is a strict calendar-date comparison in
// server-local time: expiry before today means EXPIRED, anything else in
// the window is EXPIRING_SOON.
func (s *AlertService) ExpiryScan(ctx context.Context) ([]domain.ExpiryAlert, error) {
	today := dateOf(s.now())
	cutoff := today.AddDate(0, 0, s.lookahead)

	units, err := s.repo.ExpiringDonations(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.ExpiryAlert, 0, len(units))
	for _, u := range units {
		severity := domain.SeverityExpiringSoon
		if beforeDate(u.ExpiryDate, today) {
			severity = domain.SeverityExpired
		}
		alerts = append(alerts, domain.ExpiryAlert{
			DonationID: u.DonationID,
			BloodType:  u.BloodType,
			DonorName:  u.DonorName,
			ExpiryDate: u.ExpiryDate,
			Severity:   severity,
		})
	}
	return alerts, nil
}
