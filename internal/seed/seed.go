// Package seed clears and repopulates every collection of a target store with
// the demo fixtures. Steps run in a fixed order because later collections
// reference ids assigned to earlier ones. There is no transaction: a failure
// part way leaves the target partially seeded.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/notification"
	"github.com/carelink/carelink/internal/domain/pharmacy"
	"github.com/carelink/carelink/internal/platform/authstore"
	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

// Provisioner creates auth provider accounts for the demo users.
type Provisioner interface {
	EnsureUser(ctx context.Context, email, password, displayName string) (*authstore.Account, bool, error)
}

type Option func(*Seeder)

// WithProvisioner also creates an auth account for every demo user. Account
// failures are logged and do not stop the seed.
func WithProvisioner(p Provisioner) Option {
	return func(s *Seeder) { s.auth = p }
}

// WithHashCost sets the bcrypt cost of the demo password hashes.
func WithHashCost(cost int) Option {
	return func(s *Seeder) { s.hashCost = cost }
}

// WithClock sets the time the fixture offsets are relative to.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

type Seeder struct {
	target   backend.Store
	fixtures *Fixtures
	logger   zerolog.Logger
	auth     Provisioner
	hashCost int
	now      func() time.Time
}

func New(target backend.Store, f *Fixtures, logger zerolog.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		target:   target,
		fixtures: f,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result reports what a run stored.
type Result struct {
	Counts      map[string]int `json:"counts"`
	Provisioned int            `json:"provisioned"`
}

// run carries the id indexes built by earlier steps.
type run struct {
	now           time.Time
	users         map[string]string // email -> id
	patients      map[string]string // email -> id
	doctors       map[string]string // email -> id
	pharmacies    map[string]string // email -> id
	appointments  map[string]string // key -> id
	prescriptions map[string]string // key -> id
	rxPatient     map[string]string // prescription key -> patient email
}

type step struct {
	collection string
	build      func(*run) ([]backend.Record, error)
	index      func(*run, []backend.Record, []backend.Record) error
}

// Run seeds every collection in order and stops at the first failure.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	r := &run{now: s.now().UTC().Truncate(time.Second)}
	res := &Result{Counts: make(map[string]int, len(backend.Collections))}

	for _, st := range s.steps() {
		recs, err := st.build(r)
		if err != nil {
			return res, fmt.Errorf("build %s: %w", st.collection, err)
		}
		stored, err := s.replace(ctx, st.collection, recs)
		if err != nil {
			return res, err
		}
		res.Counts[st.collection] = len(stored)
		if st.index != nil {
			if err := st.index(r, recs, stored); err != nil {
				return res, fmt.Errorf("index %s: %w", st.collection, err)
			}
		}
		if st.collection == backend.Users && s.auth != nil {
			res.Provisioned = s.provision(ctx)
		}
	}
	s.logger.Info().Str("target", s.target.Name()).Interface("counts", res.Counts).Msg("seed complete")
	return res, nil
}

func (s *Seeder) steps() []step {
	return []step{
		{backend.Users, s.users, func(r *run, _, stored []backend.Record) error {
			r.users = repository.Index(stored, "email")
			return nil
		}},
		{backend.Patients, s.patients, func(r *run, _, stored []backend.Record) error {
			r.patients = repository.Index(stored, "email")
			return nil
		}},
		{backend.Doctors, s.doctors, func(r *run, _, stored []backend.Record) error {
			r.doctors = repository.Index(stored, "email")
			return nil
		}},
		{backend.Guardians, s.guardians, nil},
		{backend.Pharmacies, s.pharmacies, func(r *run, _, stored []backend.Record) error {
			r.pharmacies = repository.Index(stored, "email")
			return nil
		}},
		{backend.Appointments, s.appointments, func(r *run, built, stored []backend.Record) error {
			keys := make([]string, len(s.fixtures.Appointments))
			for i, f := range s.fixtures.Appointments {
				keys[i] = f.Key
			}
			idx, err := keyed(keys, built, stored)
			r.appointments = idx
			return err
		}},
		{backend.Prescriptions, s.prescriptions, func(r *run, built, stored []backend.Record) error {
			keys := make([]string, len(s.fixtures.Prescriptions))
			r.rxPatient = make(map[string]string, len(keys))
			for i, f := range s.fixtures.Prescriptions {
				keys[i] = f.Key
				r.rxPatient[f.Key] = f.Patient
			}
			idx, err := keyed(keys, built, stored)
			r.prescriptions = idx
			return err
		}},
		{backend.Orders, s.orders, nil},
		{backend.VitalsHistory, s.vitals, nil},
		{backend.Notifications, s.notifications, nil},
		{backend.LabReports, s.labReports, nil},
	}
}

// replace clears collection, inserts recs and re-reads what was stored.
func (s *Seeder) replace(ctx context.Context, collection string, recs []backend.Record) ([]backend.Record, error) {
	cleared, err := s.target.Clear(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("clear %s: %w", collection, err)
	}
	for _, rec := range recs {
		if _, err := s.target.Insert(ctx, collection, rec); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", collection, err)
		}
	}
	stored, err := s.target.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("re-read %s: %w", collection, err)
	}
	if len(stored) != len(recs) {
		return nil, fmt.Errorf("re-read %s: found %d records, inserted %d", collection, len(stored), len(recs))
	}
	s.logger.Info().Str("collection", collection).Int("cleared", cleared).Int("inserted", len(recs)).Msg("seeded")
	return stored, nil
}

func (s *Seeder) provision(ctx context.Context) int {
	created := 0
	for _, u := range s.fixtures.Users {
		_, isNew, err := s.auth.EnsureUser(ctx, u.Email, s.fixtures.Password, u.Name)
		if err != nil {
			s.logger.Warn().Err(err).Str("email", u.Email).Msg("auth account not provisioned")
			continue
		}
		if isNew {
			created++
		}
	}
	s.logger.Info().Int("created", created).Msg("auth accounts provisioned")
	return created
}

// keyed maps fixture keys to the ids of the built records and checks that
// every id was stored.
func keyed(keys []string, built, stored []backend.Record) (map[string]string, error) {
	present := repository.Index(stored, "id")
	idx := make(map[string]string, len(keys))
	for i, key := range keys {
		id := built[i].ID()
		if _, ok := present[id]; !ok {
			return nil, fmt.Errorf("record %q (%s) missing after insert", key, id)
		}
		idx[key] = id
	}
	return idx, nil
}

func lookup(idx map[string]string, kind, key string) (string, error) {
	id, ok := idx[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, key)
	}
	return id, nil
}

func encodeAll[T any](items []T) ([]backend.Record, error) {
	out := make([]backend.Record, 0, len(items))
	for _, it := range items {
		rec, err := backend.Encode(it)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// -- builders --

func (s *Seeder) users(r *run) ([]backend.Record, error) {
	out := make([]identity.User, 0, len(s.fixtures.Users))
	for _, f := range s.fixtures.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.fixtures.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", f.Email, err)
		}
		out = append(out, identity.User{
			Email:        strings.ToLower(f.Email),
			Name:         f.Name,
			Role:         f.Role,
			Phone:        f.Phone,
			Active:       true,
			PasswordHash: string(hash),
			CreatedAt:    r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) userName(email string) string {
	for _, u := range s.fixtures.Users {
		if strings.EqualFold(u.Email, email) {
			return u.Name
		}
	}
	return ""
}

func (s *Seeder) userPhone(email string) string {
	for _, u := range s.fixtures.Users {
		if strings.EqualFold(u.Email, email) {
			return u.Phone
		}
	}
	return ""
}

func (s *Seeder) patients(r *run) ([]backend.Record, error) {
	out := make([]identity.Patient, 0, len(s.fixtures.Patients))
	for _, f := range s.fixtures.Patients {
		userID, err := lookup(r.users, "user", f.Email)
		if err != nil {
			return nil, err
		}
		out = append(out, identity.Patient{
			UserID:      userID,
			Email:       strings.ToLower(f.Email),
			Name:        s.userName(f.Email),
			HealthID:    f.HealthID,
			DateOfBirth: f.DateOfBirth,
			Gender:      f.Gender,
			BloodGroup:  f.BloodGroup,
			Phone:       s.userPhone(f.Email),
			Address:     f.Address,
			Vitals: identity.Vitals{
				HeartRate:     f.Vitals.HeartRate,
				BloodPressure: f.Vitals.BloodPressure,
				Temperature:   f.Vitals.Temperature,
				OxygenLevel:   f.Vitals.OxygenLevel,
				Weight:        f.Vitals.Weight,
				RecordedAt:    f.Vitals.At.From(r.now),
			},
			Allergies:      nonNil(f.Allergies),
			MedicalHistory: nonNil(f.MedicalHistory),
			CreatedAt:      r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) doctors(r *run) ([]backend.Record, error) {
	out := make([]identity.Doctor, 0, len(s.fixtures.Doctors))
	for _, f := range s.fixtures.Doctors {
		userID, err := lookup(r.users, "user", f.Email)
		if err != nil {
			return nil, err
		}
		slots := make([]identity.ScheduleSlot, 0, len(f.Schedule))
		for _, sl := range f.Schedule {
			slots = append(slots, identity.ScheduleSlot{Day: sl.Day, Start: sl.Start, End: sl.End})
		}
		out = append(out, identity.Doctor{
			UserID:          userID,
			Email:           strings.ToLower(f.Email),
			Name:            s.userName(f.Email),
			Specialization:  f.Specialization,
			LicenseNumber:   f.LicenseNumber,
			ConsultationFee: f.ConsultationFee,
			ExperienceYears: f.ExperienceYears,
			Available:       f.Available,
			Schedule:        slots,
			CreatedAt:       r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) guardians(r *run) ([]backend.Record, error) {
	out := make([]identity.Guardian, 0, len(s.fixtures.Guardians))
	for _, f := range s.fixtures.Guardians {
		userID, err := lookup(r.users, "user", f.Email)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(f.Patients))
		for _, email := range f.Patients {
			id, err := lookup(r.patients, "patient", email)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		out = append(out, identity.Guardian{
			UserID:       userID,
			Email:        strings.ToLower(f.Email),
			Name:         s.userName(f.Email),
			Relationship: f.Relationship,
			PatientIDs:   ids,
			CreatedAt:    r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) pharmacies(r *run) ([]backend.Record, error) {
	out := make([]identity.Pharmacy, 0, len(s.fixtures.Pharmacies))
	for _, f := range s.fixtures.Pharmacies {
		userID, err := lookup(r.users, "user", f.Email)
		if err != nil {
			return nil, err
		}
		out = append(out, identity.Pharmacy{
			UserID:            userID,
			Email:             strings.ToLower(f.Email),
			Name:              s.userName(f.Email),
			Address:           f.Address,
			Phone:             s.userPhone(f.Email),
			LicenseNumber:     f.LicenseNumber,
			DeliveryAvailable: f.DeliveryAvailable,
			CreatedAt:         r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) appointments(r *run) ([]backend.Record, error) {
	out := make([]care.Appointment, 0, len(s.fixtures.Appointments))
	for _, f := range s.fixtures.Appointments {
		patientID, err := lookup(r.patients, "patient", f.Patient)
		if err != nil {
			return nil, err
		}
		doctorID, err := lookup(r.doctors, "doctor", f.Doctor)
		if err != nil {
			return nil, err
		}
		out = append(out, care.Appointment{
			PatientID:   patientID,
			DoctorID:    doctorID,
			ScheduledAt: f.At.From(r.now),
			Status:      f.Status,
			Type:        f.Type,
			Symptoms:    nonNil(f.Symptoms),
			Notes:       f.Notes,
			CreatedAt:   r.now,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) prescriptions(r *run) ([]backend.Record, error) {
	out := make([]care.Prescription, 0, len(s.fixtures.Prescriptions))
	for _, f := range s.fixtures.Prescriptions {
		patientID, err := lookup(r.patients, "patient", f.Patient)
		if err != nil {
			return nil, err
		}
		doctorID, err := lookup(r.doctors, "doctor", f.Doctor)
		if err != nil {
			return nil, err
		}
		var apptID string
		if f.Appointment != "" {
			if apptID, err = lookup(r.appointments, "appointment", f.Appointment); err != nil {
				return nil, err
			}
		}
		meds := make([]care.Medicine, 0, len(f.Medicines))
		for _, m := range f.Medicines {
			meds = append(meds, care.Medicine{
				Name:         m.Name,
				Dosage:       m.Dosage,
				Frequency:    m.Frequency,
				Duration:     m.Duration,
				Instructions: m.Instructions,
				Adherence:    m.Adherence,
			})
		}
		out = append(out, care.Prescription{
			PatientID:     patientID,
			DoctorID:      doctorID,
			AppointmentID: apptID,
			Diagnosis:     f.Diagnosis,
			Medicines:     meds,
			ValidFrom:     f.From.From(r.now),
			ValidUntil:    f.Until.From(r.now),
			Status:        f.Status,
			CreatedAt:     f.From.From(r.now),
		})
	}
	return encodeAll(out)
}

func (s *Seeder) orders(r *run) ([]backend.Record, error) {
	addresses := make(map[string]string, len(s.fixtures.Patients))
	for _, p := range s.fixtures.Patients {
		addresses[strings.ToLower(p.Email)] = p.Address
	}
	out := make([]pharmacy.Order, 0, len(s.fixtures.Orders))
	for _, f := range s.fixtures.Orders {
		rxID, err := lookup(r.prescriptions, "prescription", f.Prescription)
		if err != nil {
			return nil, err
		}
		patientEmail := strings.ToLower(r.rxPatient[f.Prescription])
		patientID, err := lookup(r.patients, "patient", patientEmail)
		if err != nil {
			return nil, err
		}
		pharmacyID, err := lookup(r.pharmacies, "pharmacy", f.Pharmacy)
		if err != nil {
			return nil, err
		}
		out = append(out, pharmacy.Order{
			PrescriptionID:  rxID,
			PatientID:       patientID,
			PharmacyID:      pharmacyID,
			Status:          f.Status,
			DeliveryAddress: addresses[patientEmail],
			TotalAmount:     f.TotalAmount,
			PaymentStatus:   f.PaymentStatus,
			CreatedAt:       f.At.From(r.now),
		})
	}
	return encodeAll(out)
}

func (s *Seeder) vitals(r *run) ([]backend.Record, error) {
	out := make([]care.VitalsReading, 0, len(s.fixtures.Vitals))
	for _, f := range s.fixtures.Vitals {
		patientID, err := lookup(r.patients, "patient", f.Patient)
		if err != nil {
			return nil, err
		}
		at := f.At.From(r.now)
		out = append(out, care.VitalsReading{
			PatientID:     patientID,
			HeartRate:     f.HeartRate,
			BloodPressure: f.BloodPressure,
			Temperature:   f.Temperature,
			OxygenLevel:   f.OxygenLevel,
			Weight:        f.Weight,
			RecordedAt:    at,
			CreatedAt:     at,
		})
	}
	return encodeAll(out)
}

func (s *Seeder) notifications(r *run) ([]backend.Record, error) {
	out := make([]notification.Notification, 0, len(s.fixtures.Notifications))
	for _, f := range s.fixtures.Notifications {
		userID, err := lookup(r.users, "user", f.User)
		if err != nil {
			return nil, err
		}
		out = append(out, notification.Notification{
			UserID:    userID,
			Title:     f.Title,
			Message:   f.Message,
			Type:      f.Type,
			Priority:  f.Priority,
			Read:      f.Read,
			CreatedAt: f.At.From(r.now),
		})
	}
	return encodeAll(out)
}

func (s *Seeder) labReports(r *run) ([]backend.Record, error) {
	out := make([]care.LabReport, 0, len(s.fixtures.LabReports))
	for _, f := range s.fixtures.LabReports {
		patientID, err := lookup(r.patients, "patient", f.Patient)
		if err != nil {
			return nil, err
		}
		var doctorID string
		if f.Doctor != "" {
			if doctorID, err = lookup(r.doctors, "doctor", f.Doctor); err != nil {
				return nil, err
			}
		}
		results := make([]care.LabResult, 0, len(f.Results))
		for _, res := range f.Results {
			results = append(results, care.LabResult{
				Parameter:   res.Parameter,
				Value:       res.Value,
				Unit:        res.Unit,
				NormalRange: res.NormalRange,
				Status:      res.Status,
			})
		}
		at := f.At.From(r.now)
		out = append(out, care.LabReport{
			PatientID:  patientID,
			DoctorID:   doctorID,
			TestName:   f.TestName,
			ReportDate: at,
			Status:     f.Status,
			Results:    results,
			Notes:      f.Notes,
			CreatedAt:  at,
		})
	}
	return encodeAll(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
