package pharmacy

import (
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
)

// Order statuses, in fulfilment order.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// Statuses lists every order status.
var Statuses = []string{
	StatusPending, StatusConfirmed, StatusPreparing,
	StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

var paymentStatuses = []string{"pending", "paid", "failed", "refunded"}

type Order struct {
	ID              string    `json:"id"`
	PrescriptionID  string    `json:"prescription_id,omitempty"`
	PatientID       string    `json:"patient_id"`
	PharmacyID      string    `json:"pharmacy_id"`
	Status          string    `json:"status"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	TotalAmount     float64   `json:"total_amount"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

func (o Order) Validate() error {
	switch {
	case o.ID == "":
		return backend.Required("id")
	case o.PatientID == "":
		return backend.Required("patient_id")
	case o.PharmacyID == "":
		return backend.Required("pharmacy_id")
	}
	if err := backend.OneOf("status", o.Status, Statuses...); err != nil {
		return err
	}
	return backend.OneOf("payment_status", o.PaymentStatus, paymentStatuses...)
}

// Open reports whether the order still needs work.
func (o Order) Open() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled
}
