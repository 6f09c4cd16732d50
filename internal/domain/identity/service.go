package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelink/carelink/internal/platform/repository"
)

type Service struct {
	repos Repos
}

func NewService(repos Repos) *Service {
	return &Service{repos: repos}
}

// -- Users --

func (s *Service) ListUsers(ctx context.Context) []User {
	return s.repos.Users.List(ctx)
}

func (s *Service) UserByEmail(ctx context.Context, email string) (User, error) {
	return first(s.repos.Users.ByField(ctx, "email", normalizeEmail(email)), "user", email)
}

// UsersByRole returns the users holding role.
func (s *Service) UsersByRole(ctx context.Context, role string) []User {
	return s.repos.Users.ByField(ctx, "role", role)
}

// -- Patients --

func (s *Service) ListPatients(ctx context.Context) []Patient {
	return s.repos.Patients.List(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id string) (Patient, error) {
	p, ok := s.repos.Patients.ByID(ctx, id)
	if !ok {
		return p, fmt.Errorf("patient %s: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (s *Service) PatientByEmail(ctx context.Context, email string) (Patient, error) {
	return first(s.repos.Patients.ByField(ctx, "email", normalizeEmail(email)), "patient", email)
}

// PatientsByID returns the patients among ids that exist, in the order given.
func (s *Service) PatientsByID(ctx context.Context, ids []string) []Patient {
	all := s.ListPatients(ctx)
	byID := make(map[string]Patient, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	out := make([]Patient, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// -- Doctors --

func (s *Service) ListDoctors(ctx context.Context) []Doctor {
	return s.repos.Doctors.List(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id string) (Doctor, error) {
	d, ok := s.repos.Doctors.ByID(ctx, id)
	if !ok {
		return d, fmt.Errorf("doctor %s: %w", id, repository.ErrNotFound)
	}
	return d, nil
}

func (s *Service) DoctorByEmail(ctx context.Context, email string) (Doctor, error) {
	return first(s.repos.Doctors.ByField(ctx, "email", normalizeEmail(email)), "doctor", email)
}

// -- Guardians and pharmacies --

func (s *Service) ListGuardians(ctx context.Context) []Guardian {
	return s.repos.Guardians.List(ctx)
}

func (s *Service) GuardianByEmail(ctx context.Context, email string) (Guardian, error) {
	return first(s.repos.Guardians.ByField(ctx, "email", normalizeEmail(email)), "guardian", email)
}

func (s *Service) ListPharmacies(ctx context.Context) []Pharmacy {
	return s.repos.Pharmacies.List(ctx)
}

func (s *Service) PharmacyByEmail(ctx context.Context, email string) (Pharmacy, error) {
	return first(s.repos.Pharmacies.ByField(ctx, "email", normalizeEmail(email)), "pharmacy", email)
}

func first[T any](items []T, kind, key string) (T, error) {
	if len(items) == 0 {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", kind, key, repository.ErrNotFound)
	}
	return items[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
