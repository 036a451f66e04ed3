package orders

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseTimestamp coerces the timestamp shapes the producer is known to write:
// a native time, a Mongo datetime, or an RFC 3339 string. Returns false when
// the value is absent or unrecognized; callers substitute their own default.
func ParseTimestamp(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case primitive.DateTime:
		return v.Time(), true
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// timestampOr parses raw, falling back to def when absent or malformed.
func timestampOr(raw interface{}, def time.Time) time.Time {
	if t, ok := ParseTimestamp(raw); ok {
		return t
	}
	return def
}
