// Package chatbot answers chat widget messages with canned replies. Some
// intents write a demo record to the local store and, best effort, to the
// remote backend. The two copies are never reconciled.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/care"
	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/pharmacy"
	"github.com/carelink/carelink/internal/platform/backend"
)

const helpText = "I can book an appointment, request a prescription refill, " +
	"log your latest vitals or check on a pharmacy order. Try \"book an appointment\"."

// Reply is the bot's answer. RecordID is set when the message created a record.
type Reply struct {
	Intent       string `json:"intent"`
	Text         string `json:"text"`
	Collection   string `json:"collection,omitempty"`
	RecordID     string `json:"record_id,omitempty"`
	StoredRemote bool   `json:"stored_remote,omitempty"`
}

type Bot struct {
	identity *identity.Service
	care     *care.Service
	orders   *pharmacy.Service
	local    backend.Sink
	remote   backend.Sink
	logger   zerolog.Logger
	now      func() time.Time
}

// New returns a bot. remote may be nil.
func New(id *identity.Service, c *care.Service, orders *pharmacy.Service, local, remote backend.Sink, logger zerolog.Logger) *Bot {
	return &Bot{
		identity: id,
		care:     c,
		orders:   orders,
		local:    local,
		remote:   remote,
		logger:   logger,
		now:      time.Now,
	}
}

// Reply answers message on behalf of the patient with the given email.
func (b *Bot) Reply(ctx context.Context, email, message string) (Reply, error) {
	intent := Classify(message)
	switch intent {
	case IntentHelp:
		return Reply{Intent: intent, Text: helpText}, nil
	case IntentUnknown:
		return Reply{Intent: intent, Text: "Sorry, I didn't catch that. " + helpText}, nil
	}

	p, err := b.identity.PatientByEmail(ctx, email)
	if err != nil {
		return Reply{Intent: intent, Text: "I couldn't find a patient record for " + strings.TrimSpace(email) + "."}, nil
	}

	switch intent {
	case IntentAppointment:
		return b.bookAppointment(ctx, p, message)
	case IntentRefill:
		return b.requestRefill(ctx, p)
	case IntentVitals:
		return b.logVitals(ctx, p)
	default:
		return b.orderStatus(ctx, p), nil
	}
}

func (b *Bot) bookAppointment(ctx context.Context, p identity.Patient, message string) (Reply, error) {
	doctors := b.identity.ListDoctors(ctx)
	if len(doctors) == 0 {
		return Reply{Intent: IntentAppointment, Text: "No doctors are taking bookings right now."}, nil
	}
	d := doctors[0]
	for _, doc := range doctors {
		if doc.Available {
			d = doc
			break
		}
	}
	when := b.now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	a := care.Appointment{
		PatientID:   p.ID,
		DoctorID:    d.ID,
		ScheduledAt: when,
		Status:      care.StatusScheduled,
		Type:        care.TypeVideo,
		Symptoms:    []string{},
		Notes:       "Requested via chat: " + strings.TrimSpace(message),
	}
	r, err := store(ctx, b, backend.Appointments, a)
	if err != nil {
		return r, err
	}
	r.Intent = IntentAppointment
	r.Text = fmt.Sprintf("Booked a video visit with %s on %s.", d.Name, when.Format("Mon Jan 2 at 15:04 UTC"))
	return r, nil
}

func (b *Bot) requestRefill(ctx context.Context, p identity.Patient) (Reply, error) {
	now := b.now()
	var rx *care.Prescription
	for _, candidate := range b.care.PrescriptionsForPatient(ctx, p.ID) {
		if candidate.Active(now) {
			c := candidate
			rx = &c
			break
		}
	}
	if rx == nil {
		return Reply{Intent: IntentRefill, Text: "You have no active prescription to refill."}, nil
	}
	pharmacies := b.identity.ListPharmacies(ctx)
	if len(pharmacies) == 0 {
		return Reply{Intent: IntentRefill, Text: "No pharmacy is available for refills right now."}, nil
	}
	ph := pharmacies[0]

	o := pharmacy.Order{
		PrescriptionID:  rx.ID,
		PatientID:       p.ID,
		PharmacyID:      ph.ID,
		Status:          pharmacy.StatusPending,
		DeliveryAddress: p.Address,
		PaymentStatus:   "pending",
	}
	r, err := store(ctx, b, backend.Orders, o)
	if err != nil {
		return r, err
	}
	r.Intent = IntentRefill
	r.Text = fmt.Sprintf("Sent a refill of %q to %s.", rx.Diagnosis, ph.Name)
	return r, nil
}

func (b *Bot) logVitals(ctx context.Context, p identity.Patient) (Reply, error) {
	snap := p.Vitals
	v := care.VitalsReading{
		PatientID:     p.ID,
		HeartRate:     snap.HeartRate,
		BloodPressure: snap.BloodPressure,
		Temperature:   snap.Temperature,
		OxygenLevel:   snap.OxygenLevel,
		Weight:        snap.Weight,
		RecordedAt:    b.now().UTC().Truncate(time.Second),
	}
	r, err := store(ctx, b, backend.VitalsHistory, v)
	if err != nil {
		return r, err
	}
	r.Intent = IntentVitals
	r.Text = fmt.Sprintf("Logged heart rate %d bpm and blood pressure %s.", v.HeartRate, v.BloodPressure)
	return r, nil
}

func (b *Bot) orderStatus(ctx context.Context, p identity.Patient) Reply {
	orders := b.orders.OrdersForPatient(ctx, p.ID)
	if len(orders) == 0 {
		return Reply{Intent: IntentOrder, Text: "You have no pharmacy orders."}
	}
	latest := orders[0]
	return Reply{
		Intent: IntentOrder,
		Text:   fmt.Sprintf("Your latest order is %s.", strings.ReplaceAll(latest.Status, "-", " ")),
	}
}

// store validates v, inserts it locally and then copies it to the remote
// sink. A failed remote write is logged and otherwise ignored.
func store[T backend.Validator](ctx context.Context, b *Bot, collection string, v T) (Reply, error) {
	rec, err := backend.Encode(v)
	if err != nil {
		return Reply{}, err
	}
	if _, err := backend.Decode[T](collection, rec); err != nil {
		return Reply{}, err
	}

	r := Reply{Collection: collection, RecordID: rec.ID()}
	if _, err := b.local.Insert(ctx, collection, rec); err != nil {
		return r, fmt.Errorf("store %s locally: %w", collection, err)
	}
	if b.remote != nil {
		if _, err := b.remote.Insert(ctx, collection, backend.Clone(rec)); err != nil {
			b.logger.Warn().Err(err).Str("collection", collection).Str("id", rec.ID()).
				Msg("chat record not copied to remote")
		} else {
			r.StoredRemote = true
		}
	}
	return r, nil
}
