package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/platform/repository"
)

// -- Test sources --

type downSource struct{}

func (downSource) List(context.Context, string) ([]backend.Record, error) {
	return nil, errors.New("remote unavailable")
}

func (downSource) Find(context.Context, string, string, any) ([]backend.Record, error) {
	return nil, errors.New("remote unavailable")
}

func remoteData() map[string][]backend.Record {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return map[string][]backend.Record{
		backend.Users: {
			{"id": "u-1", "email": "remote.patient@carelink.test", "name": "Remote Patient", "role": "patient", "active": true, "password_hash": "secret", "created_at": created},
			{"id": "u-2", "email": "remote.doctor@carelink.test", "name": "Remote Doctor", "role": "doctor", "active": true, "created_at": created},
		},
		backend.Patients: {
			{"id": "p-1", "user_id": "u-1", "email": "remote.patient@carelink.test", "name": "Remote Patient", "health_id": "HID-1", "date_of_birth": "1980-06-15", "created_at": created},
			{"id": "p-2", "user_id": "u-3", "email": "other@carelink.test", "name": "Other Patient", "health_id": "HID-2", "created_at": created},
		},
		backend.Doctors: {
			{"id": "d-1", "user_id": "u-2", "email": "remote.doctor@carelink.test", "name": "Remote Doctor", "specialization": "Cardiology", "created_at": created},
		},
	}
}

func newTestService(remote backend.Source) *Service {
	local := mockstore.New(localstore.NewMemory())
	return NewService(NewRepos(remote, local, zerolog.Nop()))
}

func newRemote() backend.Source {
	return mockstore.New(localstore.NewMemory(), mockstore.WithDefaults(remoteData()))
}

// -- Tests --

func TestService_ListPatients_Remote(t *testing.T) {
	svc := newTestService(newRemote())
	patients := svc.ListPatients(context.Background())
	if len(patients) != 2 || patients[0].ID != "p-1" {
		t.Errorf("expected remote patients, got %+v", patients)
	}
}

func TestService_ListPatients_FallsBackToLocal(t *testing.T) {
	svc := newTestService(downSource{})
	patients := svc.ListPatients(context.Background())
	if len(patients) == 0 || patients[0].ID != "mock-patient-1" {
		t.Errorf("expected local demo patients, got %+v", patients)
	}
}

func TestService_GetPatient(t *testing.T) {
	svc := newTestService(newRemote())

	p, err := svc.GetPatient(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Remote Patient" {
		t.Errorf("expected Remote Patient, got %s", p.Name)
	}

	_, err = svc.GetPatient(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_PatientByEmail_Normalizes(t *testing.T) {
	svc := newTestService(newRemote())
	p, err := svc.PatientByEmail(context.Background(), "  Remote.Patient@Carelink.test ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p-1" {
		t.Errorf("expected p-1, got %s", p.ID)
	}
}

func TestService_DoctorLookups(t *testing.T) {
	svc := newTestService(newRemote())
	ctx := context.Background()

	d, err := svc.DoctorByEmail(ctx, "remote.doctor@carelink.test")
	if err != nil || d.ID != "d-1" {
		t.Fatalf("expected d-1, got %+v err=%v", d, err)
	}
	if _, err := svc.GetDoctor(ctx, "d-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := svc.ListDoctors(ctx); len(got) != 1 {
		t.Errorf("expected 1 doctor, got %d", len(got))
	}
}

func TestService_EmptyRemoteCollectionIsAResult(t *testing.T) {
	svc := newTestService(newRemote())
	if got := svc.ListGuardians(context.Background()); len(got) != 0 {
		t.Errorf("expected no guardians from the remote, got %+v", got)
	}
	if _, err := svc.GuardianByEmail(context.Background(), "ravi.patel@carelink.demo"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_LocalGuardianAndPharmacy(t *testing.T) {
	svc := newTestService(downSource{})
	ctx := context.Background()

	g, err := svc.GuardianByEmail(ctx, "ravi.patel@carelink.demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Guards("mock-patient-1") {
		t.Error("expected guardian to be linked to mock-patient-1")
	}
	if _, err := svc.PharmacyByEmail(ctx, "orders@greenleaf.demo"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_UsersByRole(t *testing.T) {
	svc := newTestService(downSource{})
	doctors := svc.UsersByRole(context.Background(), RoleDoctor)
	if len(doctors) != 2 {
		t.Errorf("expected 2 local doctor users, got %d", len(doctors))
	}
	for _, u := range doctors {
		if u.Role != RoleDoctor {
			t.Errorf("unexpected role %s", u.Role)
		}
	}
}

func TestService_PatientsByID(t *testing.T) {
	svc := newTestService(newRemote())
	got := svc.PatientsByID(context.Background(), []string{"p-2", "nope", "p-1"})
	if len(got) != 2 || got[0].ID != "p-2" || got[1].ID != "p-1" {
		t.Errorf("unexpected patients: %+v", got)
	}
}

func TestPatient_Age(t *testing.T) {
	p := Patient{DateOfBirth: "1980-06-15"}
	if got := p.Age(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)); got != 44 {
		t.Errorf("expected 44 the day before the birthday, got %d", got)
	}
	if got := p.Age(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)); got != 45 {
		t.Errorf("expected 45 on the birthday, got %d", got)
	}
	if got := (Patient{DateOfBirth: "unknown"}).Age(time.Now()); got != 0 {
		t.Errorf("expected 0 for unreadable date, got %d", got)
	}
}

func TestUser_Validate(t *testing.T) {
	if err := (User{ID: "u", Email: "a@b.c", Role: "nurse"}).Validate(); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := (User{ID: "u", Role: RoleAdmin}).Validate(); err == nil {
		t.Error("expected error for missing email")
	}
	if err := (User{ID: "u", Email: "a@b.c", Role: RoleAdmin}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
