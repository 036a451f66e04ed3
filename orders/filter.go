package orders

import (
	"strings"
	"time"
)

// DateRange selects an inclusive lower bound on an order's creation time,
// computed from "now".
type DateRange string

const (
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeAll   DateRange = "all"
)

// StatusAll passes every status through the filter.
const StatusAll Status = "all"

// Filters are the client-side predicates applied to a fetched order set.
// Zero values pass everything.
type Filters struct {
	Search string
	Status Status
	Range  DateRange
}

// ApplyFilters applies search, date-range and status predicates over an
// already-fetched order set, composed with logical AND. The predicates are
// independent; input order is preserved.
func ApplyFilters(all []Order, f Filters, now time.Time) []Order {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	lowerBound, bounded := rangeStart(f.Range, now)

	out := make([]Order, 0, len(all))
	for _, o := range all {
		if f.Status != "" && f.Status != StatusAll && o.Status != f.Status {
			continue
		}
		if bounded && o.CreatedAt.Before(lowerBound) {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// rangeStart returns the inclusive lower creation-time bound for a range.
// The second return is false when the range applies no bound.
func rangeStart(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

func matchesSearch(o Order, search string) bool {
	if strings.Contains(strings.ToLower(o.OrderNumber), search) {
		return true
	}
	if strings.Contains(strings.ToLower(o.CustomerName), search) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.Name), search) {
			return true
		}
	}
	return false
}
