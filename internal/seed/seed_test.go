package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/pharmacy"
	"github.com/carelink/carelink/internal/mockstore"
	"github.com/carelink/carelink/internal/platform/authstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/localstore"
	"github.com/carelink/carelink/internal/platform/repository"
)

func TestMain(m *testing.M) {
	// The storage client's opencensus worker starts at package init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTarget() *mockstore.Store {
	return mockstore.New(localstore.NewMemory(), mockstore.WithDefaults(map[string][]backend.Record{}))
}

func newSeeder(t *testing.T, target backend.Store, opts ...Option) *Seeder {
	t.Helper()
	f, err := Default()
	require.NoError(t, err)
	opts = append([]Option{WithHashCost(bcrypt.MinCost), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(target, f, zerolog.Nop(), opts...)
}

func TestDefault_Counts(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		backend.Users:         15,
		backend.Patients:      5,
		backend.Doctors:       4,
		backend.Guardians:     2,
		backend.Pharmacies:    3,
		backend.Appointments:  8,
		backend.Prescriptions: 5,
		backend.Orders:        4,
		backend.VitalsHistory: 10,
		backend.Notifications: 8,
		backend.LabReports:    4,
	}, f.Counts())

	roles := map[string]int{}
	for _, u := range f.Users {
		roles[u.Role]++
	}
	assert.Equal(t, map[string]int{"admin": 1, "patient": 5, "doctor": 4, "guardian": 2, "pharmacy": 3}, roles)
}

func TestRun_EmptyStore(t *testing.T) {
	target := newTarget()
	res, err := newSeeder(t, target).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, res.Counts[backend.Users])
	assert.Len(t, target.Snapshot(backend.Users), 15)
}

func TestRun_IsIdempotent(t *testing.T) {
	target := newTarget()
	s := newSeeder(t, target)
	f, _ := Default()

	for i := 0; i < 2; i++ {
		_, err := s.Run(context.Background())
		require.NoError(t, err)
	}
	for coll, want := range f.Counts() {
		assert.Len(t, target.Snapshot(coll), want, coll)
	}
}

func TestRun_ReplacesExistingData(t *testing.T) {
	target := mockstore.New(localstore.NewMemory())
	require.NotEmpty(t, target.Snapshot(backend.Patients), "demo defaults before seeding")

	_, err := newSeeder(t, target).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, target.Snapshot(backend.Patients), 5)
	assert.Empty(t, repository.Match(target.Snapshot(backend.Patients), "id", "mock-patient-1"))
}

func TestRun_ReferencesResolve(t *testing.T) {
	target := newTarget()
	_, err := newSeeder(t, target).Run(context.Background())
	require.NoError(t, err)

	ids := func(coll string) map[string]bool {
		out := map[string]bool{}
		for _, rec := range target.Snapshot(coll) {
			out[rec.ID()] = true
		}
		return out
	}
	users, patients, doctors := ids(backend.Users), ids(backend.Patients), ids(backend.Doctors)
	pharmacies, rxs, appts := ids(backend.Pharmacies), ids(backend.Prescriptions), ids(backend.Appointments)

	decode := func(coll string) []backend.Record { return target.Snapshot(coll) }

	for _, rec := range decode(backend.Appointments) {
		a, err := backend.Decode[care.Appointment](backend.Appointments, rec)
		require.NoError(t, err)
		assert.True(t, patients[a.PatientID], "appointment %s patient", a.ID)
		assert.True(t, doctors[a.DoctorID], "appointment %s doctor", a.ID)
	}
	for _, rec := range decode(backend.Prescriptions) {
		p, err := backend.Decode[care.Prescription](backend.Prescriptions, rec)
		require.NoError(t, err)
		assert.True(t, patients[p.PatientID])
		assert.True(t, doctors[p.DoctorID])
		if p.AppointmentID != "" {
			assert.True(t, appts[p.AppointmentID])
		}
	}
	for _, rec := range decode(backend.Orders) {
		o, err := backend.Decode[pharmacy.Order](backend.Orders, rec)
		require.NoError(t, err)
		assert.True(t, rxs[o.PrescriptionID])
		assert.True(t, patients[o.PatientID])
		assert.True(t, pharmacies[o.PharmacyID])
		assert.NotEmpty(t, o.DeliveryAddress)
	}
	for _, rec := range decode(backend.Guardians) {
		g, err := backend.Decode[identity.Guardian](backend.Guardians, rec)
		require.NoError(t, err)
		assert.True(t, users[g.UserID])
		for _, id := range g.PatientIDs {
			assert.True(t, patients[id])
		}
	}
	for _, rec := range decode(backend.Notifications) {
		assert.True(t, users[rec.String("user_id")])
	}
	for _, rec := range decode(backend.VitalsHistory) {
		assert.True(t, patients[rec.String("patient_id")])
	}
	for _, rec := range decode(backend.LabReports) {
		r, err := backend.Decode[care.LabReport](backend.LabReports, rec)
		require.NoError(t, err)
		assert.True(t, patients[r.PatientID])
	}
}

func TestRun_PasswordsAreHashed(t *testing.T) {
	target := newTarget()
	_, err := newSeeder(t, target).Run(context.Background())
	require.NoError(t, err)

	admin := repository.Match(target.Snapshot(backend.Users), "email", "admin@carelink.demo")
	require.Len(t, admin, 1)
	hash := admin[0].String("password_hash")
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "carelink-demo", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("carelink-demo")))
}

func TestRun_TimesAreRelativeToClock(t *testing.T) {
	target := newTarget()
	_, err := newSeeder(t, target).Run(context.Background())
	require.NoError(t, err)

	var upcoming int
	for _, rec := range target.Snapshot(backend.Appointments) {
		a, err := backend.Decode[care.Appointment](backend.Appointments, rec)
		require.NoError(t, err)
		if a.Upcoming(fixedNow) {
			upcoming++
		}
	}
	assert.Equal(t, 3, upcoming)
}

// failingStore fails inserts into one collection.
type failingStore struct {
	*mockstore.Store
	collection string
}

func (f failingStore) Insert(ctx context.Context, collection string, rec backend.Record) (string, error) {
	if collection == f.collection {
		return "", errors.New("write rejected")
	}
	return f.Store.Insert(ctx, collection, rec)
}

func TestRun_StopsAtFirstFailureLeavingEarlierSteps(t *testing.T) {
	target := newTarget()
	_, err := newSeeder(t, failingStore{Store: target, collection: backend.Appointments}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert into appointments")

	assert.Len(t, target.Snapshot(backend.Users), 15)
	assert.Len(t, target.Snapshot(backend.Pharmacies), 3)
	assert.Empty(t, target.Snapshot(backend.Appointments))
	assert.False(t, target.Stored(backend.Prescriptions))
}

func TestRun_UnknownReference(t *testing.T) {
	f, err := Parse([]byte(`
password: x
users:
  - {email: a@x.demo, name: A, role: patient}
patients:
  - {email: b@x.demo, health_id: H1, date_of_birth: "2000-01-01", gender: male, vitals: {at: 0h}}
`))
	require.NoError(t, err)

	_, err = New(newTarget(), f, zerolog.Nop(), WithHashCost(bcrypt.MinCost)).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown user "b@x.demo"`)
}

func TestParse_BadOffset(t *testing.T) {
	_, err := Parse([]byte("appointments:\n  - {key: a, at: soon}\n"))
	assert.Error(t, err)
}

type fakeProvisioner struct {
	existing map[string]bool
	fail     string
	calls    int
}

func (f *fakeProvisioner) EnsureUser(_ context.Context, email, password, name string) (*authstore.Account, bool, error) {
	f.calls++
	if email == f.fail {
		return nil, false, errors.New("quota exceeded")
	}
	if f.existing[email] {
		return &authstore.Account{Email: email, DisplayName: name}, false, nil
	}
	return &authstore.Account{UID: "uid-" + email, Email: email, DisplayName: name}, true, nil
}

func TestRun_ProvisionsAuthAccounts(t *testing.T) {
	p := &fakeProvisioner{
		existing: map[string]bool{"admin@carelink.demo": true},
		fail:     "grace.kim@carelink.demo",
	}
	res, err := newSeeder(t, newTarget(), WithProvisioner(p)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, p.calls)
	assert.Equal(t, 13, res.Provisioned)
}

func TestRun_ProvisionWithStubClient(t *testing.T) {
	res, err := newSeeder(t, newTarget(), WithProvisioner(authstore.Stub())).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Provisioned)
	assert.Equal(t, 15, res.Counts[backend.Users])
}
