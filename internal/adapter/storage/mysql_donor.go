package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

// Donor directory queries. Same adapter, same database; donors are read
// inside RecordDonation's transaction as well, see mysql_adapter.go.

const donorColumns = `id, full_name, age, weight_kg, blood_type, phone,
	COALESCE(id_document, ''), COALESCE(clinical_document, ''), created_at, updated_at`

func (m *MySQLAdapter) CreateDonor(ctx context.Context, d domain.Donor) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO donors (full_name, age, weight_kg, blood_type, phone, id_document, clinical_document)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))`,
		d.FullName, d.Age, d.WeightKg, d.BloodType, d.Phone, d.IDDocument, d.ClinicalDoc,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert donor: %v", domain.ErrPersistence, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: donor id: %v", domain.ErrPersistence, err)
	}
	return id, nil
}

func (m *MySQLAdapter) GetDonor(ctx context.Context, id int64) (*domain.Donor, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE id = ?`, id)

	d, err := scanDonor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query donor: %v", domain.ErrPersistence, err)
	}
	return d, nil
}

func (m *MySQLAdapter) ListDonors(ctx context.Context) ([]domain.Donor, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT `+donorColumns+` FROM donors ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query donors: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	return collectDonors(rows)
}

func (m *MySQLAdapter) SearchDonors(ctx context.Context, q string, limit int) ([]domain.Donor, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE full_name LIKE ? LIMIT ?`,
		"%"+q+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search donors: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	return collectDonors(rows)
}

func (m *MySQLAdapter) UpdateDonor(ctx context.Context, d domain.Donor) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE donors
		SET full_name = ?, age = ?, weight_kg = ?, blood_type = ?, phone = ?, updated_at = NOW()
		WHERE id = ?`,
		d.FullName, d.Age, d.WeightKg, d.BloodType, d.Phone, d.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: update donor: %v", domain.ErrPersistence, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, d.ID)
	}
	return nil
}

func (m *MySQLAdapter) DeleteDonor(ctx context.Context, id int64) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM donors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete donor: %v", domain.ErrPersistence, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*domain.Donor, error) {
	var d domain.Donor
	err := row.Scan(
		&d.ID, &d.FullName, &d.Age, &d.WeightKg, &d.BloodType, &d.Phone,
		&d.IDDocument, &d.ClinicalDoc, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDonors(rows *sql.Rows) ([]domain.Donor, error) {
	var donors []domain.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan donor: %v", domain.ErrPersistence, err)
		}
		donors = append(donors, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate donors: %v", domain.ErrPersistence, err)
	}
	return donors, nil
}
