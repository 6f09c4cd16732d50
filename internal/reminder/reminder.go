// Package reminder notifies patients shortly before their appointments.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/notification"
)

// Reminder finds appointments starting within the lead time and creates a
// notification for each, which also pushes it to the patient's devices.
// Each appointment is reminded at most once per process.
type Reminder struct {
	care          *care.Service
	identity      *identity.Service
	notifications *notification.Service
	lead          time.Duration
	logger        zerolog.Logger
	now           func() time.Time

	mu   sync.Mutex
	sent map[string]bool
}

func New(c *care.Service, id *identity.Service, n *notification.Service, lead time.Duration, logger zerolog.Logger) *Reminder {
	return &Reminder{
		care:          c,
		identity:      id,
		notifications: n,
		lead:          lead,
		logger:        logger,
		now:           time.Now,
		sent:          make(map[string]bool),
	}
}

// Start runs the check every interval until the returned scheduler is stopped.
func (r *Reminder) Start(ctx context.Context, interval time.Duration) (*gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("reminder interval must be positive, got %s", interval)
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(interval).Do(func() {
		n, err := r.RunOnce(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("appointment reminder check failed")
			return
		}
		r.logger.Debug().Int("sent", n).Msg("appointment reminder check done")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders: %w", err)
	}
	s.StartAsync()
	r.logger.Info().Dur("interval", interval).Dur("lead", r.lead).Msg("appointment reminders started")
	return s, nil
}

// RunOnce sends the reminders that are due now and returns how many were sent.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	sent := 0
	var errs []error
	for _, a := range r.care.AppointmentsStartingWithin(ctx, now, r.lead) {
		if !r.claim(a.ID) {
			continue
		}
		if err := r.remind(ctx, a, now); err != nil {
			r.release(a.ID)
			r.logger.Warn().Err(err).Str("appointment_id", a.ID).Msg("reminder not sent")
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

func (r *Reminder) remind(ctx context.Context, a care.Appointment, now time.Time) error {
	p, err := r.identity.GetPatient(ctx, a.PatientID)
	if err != nil {
		return err
	}
	with := "your doctor"
	if d, err := r.identity.GetDoctor(ctx, a.DoctorID); err == nil {
		with = d.Name
	}

	_, err = r.notifications.Create(ctx, notification.Notification{
		UserID:   p.UserID,
		Title:    "Upcoming appointment",
		Message:  fmt.Sprintf("Your %s appointment with %s starts in %s.", a.Type, with, until(now, a.ScheduledAt)),
		Type:     notification.TypeAppointment,
		Priority: notification.PriorityHigh,
	})
	return err
}

// claim marks an appointment as reminded and reports whether this caller
// got it first.
func (r *Reminder) claim(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent[id] {
		return false
	}
	r.sent[id] = true
	return true
}

func (r *Reminder) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sent, id)
}

// until renders the time left rounded to the minute, e.g. "2h5m".
func until(now, at time.Time) string {
	d := at.Sub(now).Round(time.Minute)
	if d < time.Minute {
		return "less than a minute"
	}
	s := d.String()
	if len(s) > 2 && s[len(s)-2:] == "0s" {
		s = s[:len(s)-2]
	}
	return s
}
