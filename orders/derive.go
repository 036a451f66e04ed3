package orders

import "time"

// urgencyAge is how long a placed order may wait before it is flagged urgent.
const urgencyAge = 15 * time.Minute

// defaultPrepMinutes applies when no item declares a preparation time.
const defaultPrepMinutes = 15

// IsUrgent reports whether an order has sat unconfirmed for too long. Urgency
// is a function of the current time and must be recomputed on every render or
// poll, never cached on the order.
func IsUrgent(o Order, now time.Time) bool {
	return o.Status == StatusPlaced && now.Sub(o.CreatedAt) > urgencyAge
}

// EstimatedReadyTime is when the kitchen should have the order ready: its
// creation time plus the slowest item's preparation time.
func EstimatedReadyTime(o Order) time.Time {
	prep := 0
	for _, item := range o.Items {
		if item.PreparationMinutes > prep {
			prep = item.PreparationMinutes
		}
	}
	if prep <= 0 {
		prep = defaultPrepMinutes
	}
	return o.CreatedAt.Add(time.Duration(prep) * time.Minute)
}

// ReconciledSubtotal recomputes the subtotal from the normalized line items,
// as a display cross-check against Pricing.Subtotal. The two are not required
// to match exactly, but a large divergence indicates a normalization bug.
func ReconciledSubtotal(o Order) float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
