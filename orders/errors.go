package orders

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound is returned by single-order fetches when the id does not
// resolve to a document.
var ErrOrderNotFound = errors.New("order not found")

// CapabilityError marks a query the backing store could not serve for lack of
// an index or similar capability. It is internal to the resolver's fallback
// chain and never surfaced to callers.
type CapabilityError struct {
	Op  string
	Err error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("store capability missing for %s: %v", e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// IsCapabilityError reports whether err is a capability degradation rather
// than a hard failure.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}

// FetchError is surfaced on a one-shot fetch when every fallback tier failed.
type FetchError struct {
	EstablishmentID string
	Err             error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not load orders for establishment %s", e.EstablishmentID)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InvalidStatusError is returned when a caller requests a status outside the
// establishment-writable set.
type InvalidStatusError struct {
	Requested Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("status %q cannot be set by the establishment", e.Requested)
}

// TransitionError is returned when the requested status is writable but not
// reachable from the order's current status.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot change status from %s to %s", e.From, e.To)
}
