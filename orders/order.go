package orders

import "time"

// Status is an order's lifecycle state. Orders are created by the
// customer-facing app in StatusPlaced; this system advances them through the
// establishment-owned phase; the delivery subsystem owns everything after
// pickup.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// TimelineEntry is one append-only audit record of a status change.
type TimelineEntry struct {
	Status    Status    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

// OrderItem is a single line of an order, with fields already resolved
// through the normalizer's fallback chain.
type OrderItem struct {
	MenuItemID          string   `bson:"menuItemId" json:"menu_item_id"`
	Name                string   `bson:"name" json:"name"`
	Price               float64  `bson:"price" json:"price"`
	Quantity            int      `bson:"quantity" json:"quantity"`
	Customizations      []string `bson:"customizations,omitempty" json:"customizations,omitempty"`
	SpecialInstructions string   `bson:"specialInstructions,omitempty" json:"special_instructions,omitempty"`
	Images              []string `bson:"images,omitempty" json:"images,omitempty"`
	PreparationMinutes  int      `bson:"preparationTime,omitempty" json:"preparation_minutes,omitempty"`
}

// Pricing holds the order's money breakdown. Total is trusted from storage,
// not re-derived; see ReconciledSubtotal for the display cross-check.
type Pricing struct {
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	Tax         float64 `bson:"tax" json:"tax"`
	DeliveryFee float64 `bson:"deliveryFee" json:"delivery_fee"`
	Discount    float64 `bson:"discount" json:"discount"`
	Total       float64 `bson:"total" json:"total"`
}

// DeliveryAddress is the flattened delivery destination.
type DeliveryAddress struct {
	Label   string `bson:"label,omitempty" json:"label,omitempty"`
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// Payment describes how the customer pays.
type Payment struct {
	Method        string `bson:"method" json:"method"`
	Status        string `bson:"status" json:"status"`
	TransactionID string `bson:"transactionId,omitempty" json:"transaction_id,omitempty"`
}

// Order is the canonical order shape every consumer of this package operates
// on. It is produced exclusively by Normalize; raw producer documents never
// leave this package.
type Order struct {
	ID              string `bson:"-" json:"id"`
	OrderNumber     string `bson:"orderNumber" json:"order_number"`
	CustomerID      string `bson:"customerId" json:"customer_id"`
	EstablishmentID string `bson:"establishmentId" json:"establishment_id"`
	DeliveryAgentID string `bson:"deliveryAgentId,omitempty" json:"delivery_agent_id,omitempty"`

	CustomerName  string `bson:"customerName" json:"customer_name"`
	CustomerPhone string `bson:"customerPhone" json:"customer_phone"`

	Items    []OrderItem     `bson:"items" json:"items"`
	Pricing  Pricing         `bson:"pricing" json:"pricing"`
	Delivery DeliveryAddress `bson:"deliveryAddress" json:"delivery_address"`
	Payment  Payment         `bson:"payment" json:"payment"`

	Status   Status          `bson:"status" json:"status"`
	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`

	CreatedAt             time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt             time.Time  `bson:"updatedAt" json:"updated_at"`
	EstimatedDeliveryTime time.Time  `bson:"estimatedDeliveryTime" json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time `bson:"actualDeliveryTime,omitempty" json:"actual_delivery_time,omitempty"`
}
