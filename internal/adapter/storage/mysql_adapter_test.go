package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
	"github.com/dgarcia9/blood-bank/migrations"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/bloodbank?parseTime=true&loc=Local"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := migrations.Up(db); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return db
}

func createTestDonor(t *testing.T, adapter *MySQLAdapter, bloodType domain.BloodType) int64 {
	t.Helper()
	id, err := adapter.CreateDonor(context.Background(), domain.Donor{
		FullName:  "Test Donor " + uuid.NewString()[:8],
		Age:       30,
		WeightKg:  70,
		BloodType: bloodType,
		Phone:     "555-0000",
	})
	if err != nil {
		t.Fatalf("create donor failed: %v", err)
	}
	return id
}

func stockOf(t *testing.T, db *sql.DB, bloodType domain.BloodType) int {
	t.Helper()
	var units int
	err := db.QueryRow(`SELECT unit_count FROM inventory WHERE blood_type = ?`, bloodType).Scan(&units)
	if err != nil {
		t.Fatalf("read stock failed: %v", err)
	}
	return units
}

func setStock(t *testing.T, db *sql.DB, bloodType domain.BloodType, units int) {
	t.Helper()
	if _, err := db.Exec(`UPDATE inventory SET unit_count = ? WHERE blood_type = ?`, units, bloodType); err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}
}

func TestRecordDonation_InsertAndIncrement(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	donorID := createTestDonor(t, adapter, domain.BloodBNeg)
	before := stockOf(t, db, domain.BloodBNeg)

	rec, err := adapter.RecordDonation(ctx, domain.DonationRecord{
		ID:         uuid.NewString(),
		DonorID:    donorID,
		VolumeML:   450,
		ExpiryDate: time.Now().AddDate(0, 0, 42),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("record donation failed: %v", err)
	}

	if rec.BloodType != domain.BloodBNeg {
		t.Errorf("expected blood type resolved to B-, got %s", rec.BloodType)
	}
	if got := stockOf(t, db, domain.BloodBNeg); got != before+1 {
		t.Errorf("expected stock %d, got %d", before+1, got)
	}
}

func TestRecordDonation_UnknownDonorRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	var donationsBefore int
	if err := db.QueryRow(`SELECT COUNT(*) FROM donations`).Scan(&donationsBefore); err != nil {
		t.Fatalf("count donations failed: %v", err)
	}
	stockBefore := stockOf(t, db, domain.BloodAPos)

	_, err := adapter.RecordDonation(ctx, domain.DonationRecord{
		ID:         uuid.NewString(),
		DonorID:    -1,
		VolumeML:   450,
		ExpiryDate: time.Now().AddDate(0, 0, 42),
		CreatedAt:  time.Now(),
	})
	if !errors.Is(err, domain.ErrDonorNotFound) {
		t.Fatalf("expected ErrDonorNotFound, got: %v", err)
	}

	var donationsAfter int
	if err := db.QueryRow(`SELECT COUNT(*) FROM donations`).Scan(&donationsAfter); err != nil {
		t.Fatalf("count donations failed: %v", err)
	}
	if donationsAfter != donationsBefore {
		t.Errorf("expected donations unchanged (%d), got %d", donationsBefore, donationsAfter)
	}
	if got := stockOf(t, db, domain.BloodAPos); got != stockBefore {
		t.Errorf("expected stock unchanged (%d), got %d", stockBefore, got)
	}
}

func TestDispatchUnit_ConditionalDecrement(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	setStock(t, db, domain.BloodABPos, 1)

	if err := adapter.DispatchUnit(ctx, domain.BloodABPos); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if got := stockOf(t, db, domain.BloodABPos); got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}

	err := adapter.DispatchUnit(ctx, domain.BloodABPos)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got: %v", err)
	}
	if got := stockOf(t, db, domain.BloodABPos); got != 0 {
		t.Errorf("expected stock still 0, got %d", got)
	}
}

func TestDisposeDonation_DeleteAndFlooredDecrement(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	donorID := createTestDonor(t, adapter, domain.BloodONeg)

	rec, err := adapter.RecordDonation(ctx, domain.DonationRecord{
		ID:         uuid.NewString(),
		DonorID:    donorID,
		VolumeML:   450,
		ExpiryDate: time.Now().AddDate(0, 0, -3),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("record donation failed: %v", err)
	}

	// Force the drift case: counter already at zero while the row lives.
	setStock(t, db, domain.BloodONeg, 0)

	if err := adapter.DisposeDonation(ctx, rec.ID, domain.BloodONeg); err != nil {
		t.Fatalf("dispose failed: %v", err)
	}
	if got := stockOf(t, db, domain.BloodONeg); got != 0 {
		t.Errorf("expected stock floored at 0, got %d", got)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM donations WHERE id = ?`, rec.ID).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Error("expected donation row deleted")
	}
}

func TestDisposeDonation_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)
	err := adapter.DisposeDonation(context.Background(), uuid.NewString(), domain.BloodAPos)
	if !errors.Is(err, domain.ErrDonationNotFound) {
		t.Errorf("expected ErrDonationNotFound, got: %v", err)
	}
}

func TestExpiringDonations_OrderedAscending(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	donorID := createTestDonor(t, adapter, domain.BloodBPos)

	near := time.Now().AddDate(0, 0, 2)
	far := time.Now().AddDate(0, 0, 5)
	for _, exp := range []time.Time{far, near} {
		_, err := adapter.RecordDonation(ctx, domain.DonationRecord{
			ID:         uuid.NewString(),
			DonorID:    donorID,
			VolumeML:   450,
			ExpiryDate: exp,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("record donation failed: %v", err)
		}
	}

	units, err := adapter.ExpiringDonations(ctx, time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("expiring donations failed: %v", err)
	}
	if len(units) < 2 {
		t.Fatalf("expected at least 2 expiring units, got %d", len(units))
	}
	for i := 1; i < len(units); i++ {
		if units[i].ExpiryDate.Before(units[i-1].ExpiryDate) {
			t.Errorf("expected ascending expiry order at %d", i)
		}
	}
}
