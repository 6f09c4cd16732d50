package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/notification"
	"github.com/carelink/carelink/internal/domain/pharmacy"
)

// ErrNoViewer is returned when no record of the requested role matches.
var ErrNoViewer = errors.New("no matching account")

// Services are the domain services the dashboards read from.
type Services struct {
	Identity      *identity.Service
	Care          *care.Service
	Pharmacy      *pharmacy.Service
	Notifications *notification.Service
}

// Builder assembles role views.
type Builder struct {
	svc Services
	now func() time.Time
}

func NewBuilder(svc Services) *Builder {
	return &Builder{svc: svc, now: time.Now}
}

// Inbox is a user's notifications with the unread count.
type Inbox struct {
	Unread int                         `json:"unread"`
	Items  []notification.Notification `json:"items"`
}

func (b *Builder) inbox(ctx context.Context, userID string) Inbox {
	items := b.svc.Notifications.ForUser(ctx, userID)
	return Inbox{Unread: notification.Unread(items), Items: items}
}

// -- Login --

type DemoAccount struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginView struct {
	Accounts map[string][]DemoAccount `json:"accounts"`
}

// Login lists the demo accounts per role. There is no sign-in; the dashboards
// take the viewer from the query string.
func (b *Builder) Login(ctx context.Context) LoginView {
	v := LoginView{Accounts: make(map[string][]DemoAccount, len(identity.Roles))}
	for _, role := range identity.Roles {
		v.Accounts[role] = []DemoAccount{}
	}
	for _, u := range b.svc.Identity.ListUsers(ctx) {
		if _, ok := v.Accounts[u.Role]; ok {
			v.Accounts[u.Role] = append(v.Accounts[u.Role], DemoAccount{Email: u.Email, Name: u.Name})
		}
	}
	return v
}

// -- Patient --

type PatientView struct {
	Patient       identity.Patient     `json:"patient"`
	Age           int                  `json:"age"`
	Upcoming      []care.Appointment   `json:"upcoming_appointments"`
	History       []care.Appointment   `json:"past_appointments"`
	Prescriptions []care.Prescription  `json:"active_prescriptions"`
	Vitals        []care.VitalsReading `json:"vitals"`
	LabReports    []care.LabReport     `json:"lab_reports"`
	Orders        []pharmacy.Order     `json:"orders"`
	Notifications Inbox                `json:"notifications"`
}

func (b *Builder) Patient(ctx context.Context, email string) (*PatientView, error) {
	p, err := pick(ctx, email, b.svc.Identity.PatientByEmail, b.svc.Identity.ListPatients)
	if err != nil {
		return nil, err
	}
	now := b.now()
	v := &PatientView{Patient: p, Age: p.Age(now)}

	var appts []care.Appointment
	var rx []care.Prescription
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { appts = b.svc.Care.AppointmentsForPatient(gctx, p.ID); return nil })
	g.Go(func() error { rx = b.svc.Care.PrescriptionsForPatient(gctx, p.ID); return nil })
	g.Go(func() error { v.Vitals = b.svc.Care.VitalsForPatient(gctx, p.ID); return nil })
	g.Go(func() error { v.LabReports = b.svc.Care.LabReportsForPatient(gctx, p.ID); return nil })
	g.Go(func() error { v.Orders = b.svc.Pharmacy.OrdersForPatient(gctx, p.ID); return nil })
	g.Go(func() error { v.Notifications = b.inbox(gctx, p.UserID); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.Upcoming, v.History = splitAppointments(appts, now)
	v.Prescriptions = activePrescriptions(rx, now)
	return v, nil
}

// -- Doctor --

type DoctorStats struct {
	Appointments  int `json:"appointments"`
	Upcoming      int `json:"upcoming"`
	Patients      int `json:"patients"`
	Prescriptions int `json:"active_prescriptions"`
}

type DoctorView struct {
	Doctor        identity.Doctor     `json:"doctor"`
	Upcoming      []care.Appointment  `json:"upcoming_appointments"`
	Patients      []identity.Patient  `json:"patients"`
	Prescriptions []care.Prescription `json:"prescriptions"`
	Stats         DoctorStats         `json:"stats"`
	Notifications Inbox               `json:"notifications"`
}

func (b *Builder) Doctor(ctx context.Context, email string) (*DoctorView, error) {
	d, err := pick(ctx, email, b.svc.Identity.DoctorByEmail, b.svc.Identity.ListDoctors)
	if err != nil {
		return nil, err
	}
	now := b.now()
	v := &DoctorView{Doctor: d}

	var appts []care.Appointment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { appts = b.svc.Care.AppointmentsForDoctor(gctx, d.ID); return nil })
	g.Go(func() error { v.Prescriptions = b.svc.Care.PrescriptionsForDoctor(gctx, d.ID); return nil })
	g.Go(func() error { v.Notifications = b.inbox(gctx, d.UserID); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.Upcoming, _ = splitAppointments(appts, now)
	v.Patients = b.svc.Identity.PatientsByID(ctx, patientIDs(appts, v.Prescriptions))
	v.Stats = DoctorStats{
		Appointments:  len(appts),
		Upcoming:      len(v.Upcoming),
		Patients:      len(v.Patients),
		Prescriptions: len(activePrescriptions(v.Prescriptions, now)),
	}
	return v, nil
}

// -- Guardian --

// Ward is one patient a guardian looks after.
type Ward struct {
	Patient       identity.Patient    `json:"patient"`
	Upcoming      []care.Appointment  `json:"upcoming_appointments"`
	Prescriptions []care.Prescription `json:"active_prescriptions"`
	LatestVitals  *care.VitalsReading `json:"latest_vitals,omitempty"`
	Abnormal      []care.LabResult    `json:"abnormal_results"`
}

type GuardianView struct {
	Guardian      identity.Guardian `json:"guardian"`
	Wards         []Ward            `json:"wards"`
	Notifications Inbox             `json:"notifications"`
}

func (b *Builder) Guardian(ctx context.Context, email string) (*GuardianView, error) {
	gd, err := pick(ctx, email, b.svc.Identity.GuardianByEmail, b.svc.Identity.ListGuardians)
	if err != nil {
		return nil, err
	}
	now := b.now()
	patients := b.svc.Identity.PatientsByID(ctx, gd.PatientIDs)
	v := &GuardianView{Guardian: gd, Wards: make([]Ward, len(patients))}

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range patients {
		g.Go(func() error {
			v.Wards[i] = b.ward(gctx, p, now)
			return nil
		})
	}
	g.Go(func() error { v.Notifications = b.inbox(gctx, gd.UserID); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return v, nil
}

func (b *Builder) ward(ctx context.Context, p identity.Patient, now time.Time) Ward {
	w := Ward{Patient: p, Abnormal: []care.LabResult{}}
	w.Upcoming, _ = splitAppointments(b.svc.Care.AppointmentsForPatient(ctx, p.ID), now)
	w.Prescriptions = activePrescriptions(b.svc.Care.PrescriptionsForPatient(ctx, p.ID), now)
	if vitals := b.svc.Care.VitalsForPatient(ctx, p.ID); len(vitals) > 0 {
		latest := vitals[len(vitals)-1]
		w.LatestVitals = &latest
	}
	for _, r := range b.svc.Care.LabReportsForPatient(ctx, p.ID) {
		w.Abnormal = append(w.Abnormal, r.Abnormal()...)
	}
	return w
}

// -- Pharmacy --

type PharmacyView struct {
	Pharmacy      identity.Pharmacy `json:"pharmacy"`
	Orders        []pharmacy.Order  `json:"orders"`
	ByStatus      map[string]int    `json:"orders_by_status"`
	Open          int               `json:"open_orders"`
	Notifications Inbox             `json:"notifications"`
}

func (b *Builder) Pharmacy(ctx context.Context, email string) (*PharmacyView, error) {
	ph, err := pick(ctx, email, b.svc.Identity.PharmacyByEmail, b.svc.Identity.ListPharmacies)
	if err != nil {
		return nil, err
	}
	v := &PharmacyView{Pharmacy: ph}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { v.Orders = b.svc.Pharmacy.OrdersForPharmacy(gctx, ph.ID); return nil })
	g.Go(func() error { v.Notifications = b.inbox(gctx, ph.UserID); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.ByStatus = pharmacy.CountByStatus(v.Orders)
	for _, o := range v.Orders {
		if o.Open() {
			v.Open++
		}
	}
	return v, nil
}

// -- Admin --

type AdminTotals struct {
	Users        int            `json:"users"`
	UsersByRole  map[string]int `json:"users_by_role"`
	Patients     int            `json:"patients"`
	Doctors      int            `json:"doctors"`
	Guardians    int            `json:"guardians"`
	Pharmacies   int            `json:"pharmacies"`
	Appointments int            `json:"appointments"`
	Upcoming     int            `json:"upcoming_appointments"`
	Orders       int            `json:"orders"`
	OpenOrders   int            `json:"open_orders"`
}

type AdminView struct {
	Totals AdminTotals     `json:"totals"`
	Users  []identity.User `json:"users"`
}

func (b *Builder) Admin(ctx context.Context) (*AdminView, error) {
	var (
		users      []identity.User
		patients   []identity.Patient
		doctors    []identity.Doctor
		guardians  []identity.Guardian
		pharmacies []identity.Pharmacy
		appts      []care.Appointment
		orders     []pharmacy.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { users = b.svc.Identity.ListUsers(gctx); return nil })
	g.Go(func() error { patients = b.svc.Identity.ListPatients(gctx); return nil })
	g.Go(func() error { doctors = b.svc.Identity.ListDoctors(gctx); return nil })
	g.Go(func() error { guardians = b.svc.Identity.ListGuardians(gctx); return nil })
	g.Go(func() error { pharmacies = b.svc.Identity.ListPharmacies(gctx); return nil })
	g.Go(func() error { appts = b.svc.Care.ListAppointments(gctx); return nil })
	g.Go(func() error { orders = b.svc.Pharmacy.ListOrders(gctx); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := b.now()
	t := AdminTotals{
		Users:        len(users),
		UsersByRole:  make(map[string]int, len(identity.Roles)),
		Patients:     len(patients),
		Doctors:      len(doctors),
		Guardians:    len(guardians),
		Pharmacies:   len(pharmacies),
		Appointments: len(appts),
		Orders:       len(orders),
	}
	for _, u := range users {
		t.UsersByRole[u.Role]++
	}
	for _, a := range appts {
		if a.Upcoming(now) {
			t.Upcoming++
		}
	}
	for _, o := range orders {
		if o.Open() {
			t.OpenOrders++
		}
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return &AdminView{Totals: t, Users: users}, nil
}

// pick resolves the viewer: the record with the given email, or the first
// record when no email is given.
func pick[T any](ctx context.Context, email string, byEmail func(context.Context, string) (T, error), all func(context.Context) []T) (T, error) {
	var zero T
	if email != "" {
		v, err := byEmail(ctx, email)
		if err != nil {
			return zero, fmt.Errorf("%s: %w", email, ErrNoViewer)
		}
		return v, nil
	}
	items := all(ctx)
	if len(items) == 0 {
		return zero, ErrNoViewer
	}
	return items[0], nil
}

// splitAppointments separates upcoming appointments (soonest first) from the
// rest (most recent first).
func splitAppointments(items []care.Appointment, now time.Time) (upcoming, past []care.Appointment) {
	upcoming, past = []care.Appointment{}, []care.Appointment{}
	for _, a := range items {
		if a.Upcoming(now) {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt) })
	sort.SliceStable(past, func(i, j int) bool { return past[i].ScheduledAt.After(past[j].ScheduledAt) })
	return upcoming, past
}

func activePrescriptions(items []care.Prescription, now time.Time) []care.Prescription {
	out := []care.Prescription{}
	for _, p := range items {
		if p.Active(now) {
			out = append(out, p)
		}
	}
	return out
}

func patientIDs(appts []care.Appointment, rx []care.Prescription) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, a := range appts {
		add(a.PatientID)
	}
	for _, p := range rx {
		add(p.PatientID)
	}
	return ids
}
