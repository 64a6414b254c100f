package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

type mockDonorRepo struct {
	mu     sync.Mutex
	nextID int64
	donors map[int64]domain.Donor
}

func newMockDonorRepo() *mockDonorRepo {
	return &mockDonorRepo{donors: make(map[int64]domain.Donor)}
}

func (m *mockDonorRepo) CreateDonor(ctx context.Context, d domain.Donor) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.ID = m.nextID
	m.donors[d.ID] = d
	return d.ID, nil
}

func (m *mockDonorRepo) GetDonor(ctx context.Context, id int64) (*domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.donors[id]
	if !ok {
		return nil, fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, id)
	}
	return &d, nil
}

func (m *mockDonorRepo) ListDonors(ctx context.Context) ([]domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var donors []domain.Donor
	for _, d := range m.donors {
		donors = append(donors, d)
	}
	sort.Slice(donors, func(i, j int) bool { return donors[i].ID > donors[j].ID })
	return donors, nil
}

func (m *mockDonorRepo) SearchDonors(ctx context.Context, q string, limit int) ([]domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var donors []domain.Donor
	for _, d := range m.donors {
		if strings.Contains(d.FullName, q) && len(donors) < limit {
			donors = append(donors, d)
		}
	}
	return donors, nil
}

func (m *mockDonorRepo) UpdateDonor(ctx context.Context, d domain.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.donors[d.ID]; !ok {
		return fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, d.ID)
	}
	m.donors[d.ID] = d
	return nil
}

func (m *mockDonorRepo) DeleteDonor(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.donors[id]; !ok {
		return fmt.Errorf("%w: donor %d", domain.ErrDonorNotFound, id)
	}
	delete(m.donors, id)
	return nil
}

func validDonor() domain.Donor {
	return domain.Donor{
		FullName:  "Carlos Mendoza",
		Age:       34,
		WeightKg:  78.5,
		BloodType: domain.BloodBNeg,
		Phone:     "664-555-0123",
	}
}

func TestCreateDonor_Success(t *testing.T) {
	repo := newMockDonorRepo()
	svc := NewDonorService(repo, zap.NewNop())

	id, err := svc.CreateDonor(context.Background(), validDonor())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
}

func TestCreateDonor_Invalid(t *testing.T) {
	repo := newMockDonorRepo()
	svc := NewDonorService(repo, zap.NewNop())

	cases := map[string]func(*domain.Donor){
		"empty name":  func(d *domain.Donor) { d.FullName = "  " },
		"bad age":     func(d *domain.Donor) { d.Age = 0 },
		"bad weight":  func(d *domain.Donor) { d.WeightKg = -1 },
		"bad type":    func(d *domain.Donor) { d.BloodType = "Z+" },
	}
	for name, mutate := range cases {
		d := validDonor()
		mutate(&d)
		if _, err := svc.CreateDonor(context.Background(), d); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	if len(repo.donors) != 0 {
		t.Errorf("expected no donors stored, got %d", len(repo.donors))
	}
}

func TestListDonors_Search(t *testing.T) {
	repo := newMockDonorRepo()
	svc := NewDonorService(repo, zap.NewNop())

	for _, name := range []string{"Carlos Mendoza", "Maria Lopez", "Carla Ruiz"} {
		d := validDonor()
		d.FullName = name
		if _, err := svc.CreateDonor(context.Background(), d); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	found, err := svc.ListDonors(context.Background(), "Carl")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 matches for Carl, got %d", len(found))
	}

	all, err := svc.ListDonors(context.Background(), "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 donors, got %d", len(all))
	}
}

func TestDeleteDonor_AdminOnly(t *testing.T) {
	repo := newMockDonorRepo()
	svc := NewDonorService(repo, zap.NewNop())

	id, err := svc.CreateDonor(context.Background(), validDonor())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteDonor(context.Background(), domain.RoleMedicalStaff, id); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for medical-staff, got %v", err)
	}
	if len(repo.donors) != 1 {
		t.Error("expected donor untouched after denied delete")
	}

	if err := svc.DeleteDonor(context.Background(), domain.RoleAdmin, id); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
	if len(repo.donors) != 0 {
		t.Error("expected donor removed")
	}
}

func TestUpdateDonor_NotFound(t *testing.T) {
	repo := newMockDonorRepo()
	svc := NewDonorService(repo, zap.NewNop())

	d := validDonor()
	d.ID = 42
	if err := svc.UpdateDonor(context.Background(), d); !errors.Is(err, domain.ErrDonorNotFound) {
		t.Errorf("expected ErrDonorNotFound, got %v", err)
	}
}
