package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// RecordDonation inserts the donation and increments the counter in one
// transaction. The blood type is read from the donor row inside the same
// transaction, so a caller-supplied type can never desync ledger and counter.
func (m *MySQLAdapter) RecordDonation(ctx context.Context, rec domain.DonationRecord) (domain.DonationRecord, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DonationRecord{}, fmt.Errorf("%w: begin tx: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback()

	var bloodType string
	err = tx.QueryRowContext(ctx,
		`SELECT blood_type FROM donors WHERE id = ?`, rec.DonorID,
	).Scan(&bloodType)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DonationRecord{}, fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, rec.DonorID)
	}
	if err != nil {
		return domain.DonationRecord{}, fmt.Errorf("%w: resolve donor type: %v", domain.ErrPersistence, err)
	}
	rec.BloodType = domain.BloodType(bloodType)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO donations (id, donor_id, blood_type, volume_ml, expiry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DonorID, rec.BloodType, rec.VolumeML, rec.ExpiryDate, rec.CreatedAt,
	)
	if err != nil {
		return domain.DonationRecord{}, fmt.Errorf("%w: insert donation: %v", domain.ErrPersistence, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory SET unit_count = unit_count + 1, updated_at = NOW()
		WHERE blood_type = ?`,
		rec.BloodType,
	)
	if err != nil {
		return domain.DonationRecord{}, fmt.Errorf("%w: increment stock: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DonationRecord{}, fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}
	return rec, nil
}

// DispatchUnit is a single conditional decrement. The WHERE guard makes
// concurrent dispatches serialize on the row lock: at count 1 exactly one
// of two racing calls touches a row, the other sees zero rows affected.
func (m *MySQLAdapter) DispatchUnit(ctx context.Context, bloodType domain.BloodType) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory SET unit_count = unit_count - 1, updated_at = NOW()
		WHERE blood_type = ? AND unit_count > 0`,
		bloodType,
	)
	if err != nil {
		return fmt.Errorf("%w: dispatch update: %v", domain.ErrPersistence, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, bloodType)
	}
	return nil
}

// DisposeDonation deletes the donation row and decrements the counter,
// floored at zero, in one transaction. A zero-row decrement is tolerated:
// counter drift from counter-only dispatches must not push it negative.
func (m *MySQLAdapter) DisposeDonation(ctx context.Context, donationID string, bloodType domain.BloodType) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM donations WHERE id = ? AND blood_type = ?`,
		donationID, bloodType,
	)
	if err != nil {
		return fmt.Errorf("%w: delete donation: %v", domain.ErrPersistence, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s (%s)", domain.ErrDonationNotFound, donationID, bloodType)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory SET unit_count = unit_count - 1, updated_at = NOW()
		WHERE blood_type = ? AND unit_count > 0`,
		bloodType,
	)
	if err != nil {
		return fmt.Errorf("%w: decrement stock: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (m *MySQLAdapter) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT blood_type, unit_count FROM inventory ORDER BY blood_type`)
	if err != nil {
		return nil, fmt.Errorf("%w: query inventory: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

func (m *MySQLAdapter) StockLevel(ctx context.Context, bloodType domain.BloodType) (int, error) {
	var units int
	err := m.db.QueryRowContext(ctx,
		`SELECT unit_count FROM inventory WHERE blood_type = ?`, bloodType,
	).Scan(&units)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: no inventory row for %s", domain.ErrValidation, bloodType)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: query inventory: %v", domain.ErrPersistence, err)
	}
	return units, nil
}

func (m *MySQLAdapter) StockBelow(ctx context.Context, threshold int) ([]domain.StockLevel, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT blood_type, unit_count FROM inventory
		WHERE unit_count < ? ORDER BY blood_type`,
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query low stock: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

func (m *MySQLAdapter) ExpiringDonations(ctx context.Context, cutoff time.Time) ([]domain.ExpiringUnit, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT d.id, d.blood_type, d.expiry_date, don.full_name
		FROM donations d
		JOIN donors don ON d.donor_id = don.id
		WHERE d.expiry_date <= ?
		ORDER BY d.expiry_date ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query expiring donations: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var units []domain.ExpiringUnit
	for rows.Next() {
		var u domain.ExpiringUnit
		if err := rows.Scan(&u.DonationID, &u.BloodType, &u.ExpiryDate, &u.DonorName); err != nil {
			return nil, fmt.Errorf("%w: scan expiring donation: %v", domain.ErrPersistence, err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expiring donations: %v", domain.ErrPersistence, err)
	}
	return units, nil
}

func scanStockLevels(rows *sql.Rows) ([]domain.StockLevel, error) {
	var levels []domain.StockLevel
	for rows.Next() {
		var lvl domain.StockLevel
		if err := rows.Scan(&lvl.BloodType, &lvl.Units); err != nil {
			return nil, fmt.Errorf("%w: scan stock level: %v", domain.ErrPersistence, err)
		}
		levels = append(levels, lvl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate stock levels: %v", domain.ErrPersistence, err)
	}
	return levels, nil
}
