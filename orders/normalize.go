package orders

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalize converts one raw order document, as written by the customer-facing
// app, into the canonical Order. It is pure and total: every missing or
// malformed optional field has a documented default, and the same resolution
// chain applies no matter which access path (fetch-all, filtered fetch,
// fetch-by-id, subscription) produced the document.
//
// Normalizing a document that is already in canonical shape is a no-op.
func Normalize(id string, doc bson.M, now time.Time) Order {
	delivery := asMap(doc["deliveryAddress"])

	o := Order{
		ID:              id,
		OrderNumber:     asString(doc["orderNumber"]),
		CustomerID:      asString(doc["customerId"]),
		EstablishmentID: firstString(doc["establishmentId"], doc["restaurantId"]),
		DeliveryAgentID: asString(doc["deliveryAgentId"]),
		CustomerName:    stringOr(firstString(doc["customerName"], delivery["name"]), "Customer"),
		CustomerPhone:   stringOr(firstString(doc["customerPhone"], delivery["phone"]), "No phone"),
		Items:           normalizeItems(doc["items"]),
		Pricing:         normalizePricing(doc),
		Delivery: DeliveryAddress{
			Label:   asString(delivery["label"]),
			Street:  firstString(delivery["address"], delivery["street"]),
			City:    asString(delivery["city"]),
			State:   asString(delivery["state"]),
			Pincode: asString(delivery["pincode"]),
		},
		Payment:               normalizePayment(doc["payment"]),
		Status:                normalizeStatus(doc["status"]),
		Timeline:              normalizeTimeline(doc["timeline"], now),
		CreatedAt:             timestampOr(doc["createdAt"], now),
		UpdatedAt:             timestampOr(doc["updatedAt"], now),
		EstimatedDeliveryTime: timestampOr(doc["estimatedDeliveryTime"], now),
	}

	if t, ok := ParseTimestamp(doc["actualDeliveryTime"]); ok {
		o.ActualDeliveryTime = &t
	}

	return o
}

func normalizeItems(raw interface{}) []OrderItem {
	entries := asSlice(raw)
	items := make([]OrderItem, 0, len(entries))
	for _, entry := range entries {
		m := asMap(entry)
		if m == nil {
			continue
		}
		// The producer writes either a flat item or one with a nested
		// menuItem snapshot; nested wins when both are present.
		nested := asMap(m["menuItem"])

		item := OrderItem{
			MenuItemID:          firstString(m["menuItemId"], nested["id"]),
			Name:                stringOr(firstString(nested["name"], m["name"]), "Item"),
			Price:               firstNumber(nested["price"], m["price"]),
			Quantity:            int(numberOr(m["quantity"], 1)),
			Customizations:      asStringSlice(m["customizations"]),
			SpecialInstructions: asString(m["specialInstructions"]),
			Images:              firstStringSlice(nested["images"], m["images"]),
			PreparationMinutes:  int(firstNumber(nested["preparationTime"], m["preparationTime"])),
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.Price < 0 {
			item.Price = 0
		}
		items = append(items, item)
	}
	return items
}

func normalizePricing(doc bson.M) Pricing {
	p := asMap(doc["pricing"])
	read := func(key string) float64 {
		v := firstNumber(p[key], doc[key])
		if v < 0 {
			return 0
		}
		return v
	}
	return Pricing{
		Subtotal:    read("subtotal"),
		Tax:         read("tax"),
		DeliveryFee: read("deliveryFee"),
		Discount:    read("discount"),
		Total:       read("total"),
	}
}

func normalizePayment(raw interface{}) Payment {
	m := asMap(raw)
	return Payment{
		Method:        stringOr(asString(m["method"]), "cash"),
		Status:        stringOr(asString(m["status"]), "pending"),
		TransactionID: asString(m["transactionId"]),
	}
}

func normalizeStatus(raw interface{}) Status {
	s := Status(asString(raw))
	if s == "" {
		return StatusPlaced
	}
	return s
}

func normalizeTimeline(raw interface{}, now time.Time) []TimelineEntry {
	entries := asSlice(raw)
	timeline := make([]TimelineEntry, 0, len(entries))
	for _, entry := range entries {
		m := asMap(entry)
		if m == nil {
			continue
		}
		timeline = append(timeline, TimelineEntry{
			Status:    Status(asString(m["status"])),
			Timestamp: timestampOr(m["timestamp"], now),
			Note:      asString(m["note"]),
		})
	}
	return timeline
}

// --- loose-typed document accessors ---

func asMap(v interface{}) bson.M {
	switch m := v.(type) {
	case bson.M:
		return m
	case map[string]interface{}:
		return m
	case bson.D:
		return m.Map()
	default:
		return nil
	}
}

func asSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case bson.A:
		return s
	case []interface{}:
		return s
	default:
		return nil
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case primitive.ObjectID:
		return s.Hex()
	default:
		return ""
	}
}

func firstString(vs ...interface{}) string {
	for _, v := range vs {
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func firstNumber(vs ...interface{}) float64 {
	for _, v := range vs {
		if n, ok := asNumber(v); ok {
			return n
		}
	}
	return 0
}

func numberOr(v interface{}, def float64) float64 {
	if n, ok := asNumber(v); ok {
		return n
	}
	return def
}

func asStringSlice(v interface{}) []string {
	entries := asSlice(v)
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := asString(entry); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstStringSlice(vs ...interface{}) []string {
	for _, v := range vs {
		if out := asStringSlice(v); out != nil {
			return out
		}
	}
	return nil
}
