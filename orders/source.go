package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Raw is one order document as the backing store returned it, before
// normalization.
type Raw struct {
	ID  string
	Doc bson.M
}

// Query describes one retrieval attempt against the backing store. The
// resolver degrades a query by clearing SortDesc and then Status as fallback
// tiers; a Source must honor exactly what is set and report capability gaps
// via CapabilityError.
type Query struct {
	EstablishmentID string
	Status          Status // empty means all statuses
	SortDesc        bool   // server-side createdAt descending
}

// Source is the persistence boundary the resolver and guard are constructed
// with. Implementations must treat index availability as uncertain: a Query
// the store cannot serve for lack of an index fails with CapabilityError,
// anything else with a plain error.
type Source interface {
	// Query returns the raw documents matching q.
	Query(ctx context.Context, q Query) ([]Raw, error)

	// Get returns one raw document by id, or ErrOrderNotFound.
	Get(ctx context.Context, id string) (Raw, error)

	// UpdateStatus sets the order's status and appends one timeline entry.
	// It is the only write this system performs against orders.
	UpdateStatus(ctx context.Context, id string, status Status, entry TimelineEntry, updatedAt time.Time) error

	// Watch signals on the returned channel whenever any order of the
	// establishment changes. The channel closes when ctx is cancelled or the
	// underlying stream ends.
	Watch(ctx context.Context, establishmentID string) (<-chan struct{}, error)
}
