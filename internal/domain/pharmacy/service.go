package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
)

// ErrUnknownStatus is returned for a status outside Statuses.
var ErrUnknownStatus = errors.New("unknown order status")

type Service struct {
	orders repository.Reader[Order]
	local  Updater
}

func NewService(orders repository.Reader[Order], local Updater) *Service {
	return &Service{orders: orders, local: local}
}

// OrdersForPharmacy returns the pharmacy's orders, newest first.
func (s *Service) OrdersForPharmacy(ctx context.Context, pharmacyID string) []Order {
	return newestFirst(s.orders.ByField(ctx, "pharmacy_id", pharmacyID))
}

func (s *Service) OrdersForPatient(ctx context.Context, patientID string) []Order {
	return newestFirst(s.orders.ByField(ctx, "patient_id", patientID))
}

func (s *Service) ListOrders(ctx context.Context) []Order {
	return newestFirst(s.orders.List(ctx))
}

// UpdateOrderStatus changes an order's status in the local store only. The
// remote backend is never written; an order known only remotely gets a local
// copy carrying the new status.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (Order, error) {
	var o Order
	if backend.OneOf("status", status, Statuses...) != nil {
		return o, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	rec, err := s.local.Update(backend.Orders, orderID, backend.Record{"status": status})
	if errors.Is(err, repository.ErrNotFound) {
		rec, err = s.copyLocally(ctx, orderID, status)
	}
	if err != nil {
		return o, err
	}
	return backend.Decode[Order](backend.Orders, rec)
}

func (s *Service) copyLocally(ctx context.Context, orderID, status string) (backend.Record, error) {
	o, ok := s.orders.ByID(ctx, orderID)
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, repository.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	rec, err := backend.Encode(o)
	if err != nil {
		return nil, err
	}
	if _, err := s.local.Insert(ctx, backend.Orders, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CountByStatus tallies orders per status.
func CountByStatus(orders []Order) map[string]int {
	counts := make(map[string]int, len(Statuses))
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

func newestFirst(items []Order) []Order {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

