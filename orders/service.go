package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/swagatsuman/delivery-app-sub002/pkg/logger"
)

// Service is the order core: the query/subscription resolver and the status
// transition guard, sharing one Source and one normalizer. All consumers
// (HTTP handlers, dashboard, stream) depend on Service and the canonical
// Order shape only, never on raw documents.
type Service struct {
	source Source
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates the order core over the given persistence boundary.
func NewService(source Source, log *logger.Logger) *Service {
	return &Service{
		source: source,
		logger: log.WithComponent("orders"),
		now:    time.Now,
	}
}

// FetchOrders returns the establishment's orders, newest first, with the
// given filters applied. Hard storage failures surface as *FetchError;
// index-capability gaps are absorbed by the fallback tiers and never
// surfaced.
func (s *Service) FetchOrders(ctx context.Context, establishmentID string, f Filters) ([]Order, error) {
	all, err := s.loadOrders(ctx, establishmentID, f.Status)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(all, f, s.now()), nil
}

// FetchOrder returns one canonical order by id, or ErrOrderNotFound.
func (s *Service) FetchOrder(ctx context.Context, id string) (Order, error) {
	raw, err := s.source.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return Normalize(raw.ID, raw.Doc, s.now()), nil
}

// SubscribeOrders delivers a full replacement snapshot of the establishment's
// filtered orders to onUpdate: once immediately, then on every backing
// change. Snapshots are delivered from a single goroutine, so each delivery
// reflects a later or equal backing state than the previous one. Failures
// never propagate to the caller; the subscription degrades to an empty list
// and logs. The returned function releases the subscription and is safe to
// call more than once.
func (s *Service) SubscribeOrders(ctx context.Context, establishmentID string, f Filters, onUpdate func([]Order)) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		deliver := func() {
			got, err := s.loadOrders(ctx, establishmentID, f.Status)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("subscription fetch failed, delivering empty list",
					"establishment_id", establishmentID, "error", err)
				onUpdate([]Order{})
				return
			}
			onUpdate(ApplyFilters(got, f, s.now()))
		}

		deliver()

		changes, err := s.source.Watch(ctx, establishmentID)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error("order watch failed, delivering empty list",
					"establishment_id", establishmentID, "error", err)
				onUpdate([]Order{})
			}
			return
		}

		for range changes {
			if ctx.Err() != nil {
				return
			}
			deliver()
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }
}

// loadOrders is the shared retrieval strategy behind both fetch and
// subscribe: try the most selective indexed query, degrade on capability
// gaps, and always deliver createdAt-descending order regardless of which
// tier succeeded.
func (s *Service) loadOrders(ctx context.Context, establishmentID string, status Status) ([]Order, error) {
	queryStatus := status
	if queryStatus == StatusAll {
		queryStatus = ""
	}

	raws, err := s.source.Query(ctx, Query{
		EstablishmentID: establishmentID,
		Status:          queryStatus,
		SortDesc:        true,
	})
	if err != nil {
		if !IsCapabilityError(err) {
			return nil, &FetchError{EstablishmentID: establishmentID, Err: err}
		}
		s.logger.Warn("indexed order query unavailable, falling back to unsorted query",
			"establishment_id", establishmentID, "error", err)

		raws, err = s.source.Query(ctx, Query{
			EstablishmentID: establishmentID,
			Status:          queryStatus,
		})
		if err != nil {
			s.logger.Warn("filtered order query failed, falling back to establishment-only query",
				"establishment_id", establishmentID, "error", err)

			raws, err = s.source.Query(ctx, Query{EstablishmentID: establishmentID})
			if err != nil {
				return nil, &FetchError{EstablishmentID: establishmentID, Err: err}
			}
		}
	}

	now := s.now()
	orders := make([]Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, Normalize(raw.ID, raw.Doc, now))
	}

	// Idempotent even when the store already sorted; stable keeps retrieval
	// order for equal timestamps.
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// ApplyStatus is the single write path for order status. It validates the
// request against the establishment-writable set and the transition table,
// persists the change with exactly one new timeline entry, and returns the
// updated canonical order. Notification dispatch is not part of this
// contract; collaborators observe the returned order.
func (s *Service) ApplyStatus(ctx context.Context, orderID string, newStatus Status, note string) (Order, error) {
	if !writable[newStatus] {
		return Order{}, &InvalidStatusError{Requested: newStatus}
	}

	order, err := s.FetchOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if !CanTransition(order.Status, newStatus) {
		return Order{}, &TransitionError{From: order.Status, To: newStatus}
	}

	if note == "" {
		note = fmt.Sprintf("Status updated to %s", newStatus)
	}
	now := s.now()
	entry := TimelineEntry{Status: newStatus, Timestamp: now, Note: note}

	if err := s.source.UpdateStatus(ctx, orderID, newStatus, entry, now); err != nil {
		return Order{}, err
	}

	s.logger.Info("order status updated",
		"order_id", orderID, "from", order.Status, "to", newStatus)

	order.Status = newStatus
	order.Timeline = append(order.Timeline, entry)
	order.UpdatedAt = now
	return order, nil
}
