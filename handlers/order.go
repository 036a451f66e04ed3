package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swagatsuman/delivery-app-sub002/events"
	"github.com/swagatsuman/delivery-app-sub002/models"
	"github.com/swagatsuman/delivery-app-sub002/orders"
)

// Orders is the order core, wired in main. All order reads and writes go
// through it; handlers never touch raw order documents.
var Orders *orders.Service

// Events is the optional status-change publisher; nil when Kafka is not
// configured.
var Events *events.Publisher

// UpdateOrderStatusRequest defines the request body for an owner advancing an
// order.
type UpdateOrderStatusRequest struct {
	Status orders.Status `json:"status" binding:"required"`
	Note   string        `json:"note"`
}

// OrderView is an order plus the derived fields list and detail screens
// render. Derivations are recomputed per response, never persisted.
type OrderView struct {
	orders.Order
	Urgent             bool          `json:"urgent"`
	EstimatedReadyTime time.Time     `json:"estimated_ready_time"`
	ReconciledSubtotal float64       `json:"reconciled_subtotal"`
	NextStatus         orders.Status `json:"next_status,omitempty"`
}

func viewOf(o orders.Order, now time.Time) OrderView {
	view := OrderView{
		Order:              o,
		Urgent:             orders.IsUrgent(o, now),
		EstimatedReadyTime: orders.EstimatedReadyTime(o),
		ReconciledSubtotal: orders.ReconciledSubtotal(o),
	}
	if next, ok := orders.NextStatus(o); ok {
		view.NextStatus = next
	}
	return view
}

func viewsOf(list []orders.Order) []OrderView {
	now := time.Now()
	views := make([]OrderView, 0, len(list))
	for _, o := range list {
		views = append(views, viewOf(o, now))
	}
	return views
}

func filtersFromQuery(c *gin.Context) orders.Filters {
	return orders.Filters{
		Search: c.Query("search"),
		Status: orders.Status(c.Query("status")),
		Range:  orders.DateRange(c.Query("range")),
	}
}

// GetEstablishmentOrdersHandler lists an establishment's orders, newest
// first, filtered by the status/range/search query params.
func GetEstablishmentOrdersHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	establishmentID := strconv.FormatUint(uint64(establishment.ID), 10)
	list, err := Orders.FetchOrders(c.Request.Context(), establishmentID, filtersFromQuery(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": viewsOf(list)})
}

// StreamEstablishmentOrdersHandler pushes full order snapshots over SSE
// whenever the establishment's orders change, until the client disconnects.
func StreamEstablishmentOrdersHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	establishmentID := strconv.FormatUint(uint64(establishment.ID), 10)
	filters := filtersFromQuery(c)

	snapshots := make(chan []orders.Order, 1)
	unsubscribe := Orders.SubscribeOrders(c.Request.Context(), establishmentID, filters, func(list []orders.Order) {
		// Drop the stale snapshot if the client is slow; the next send
		// carries the complete replacement list anyway.
		select {
		case snapshots <- list:
		default:
			select {
			case <-snapshots:
			default:
			}
			snapshots <- list
		}
	})
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case list := <-snapshots:
			c.SSEvent("orders", viewsOf(list))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetOrderHandler returns a single order the authenticated owner is allowed
// to see.
func GetOrderHandler(c *gin.Context) {
	order, ok := fetchOwnedOrder(c, c.Param("order_id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": viewOf(order, time.Now())})
}

// UpdateOrderStatusHandler advances an order through the establishment-owned
// lifecycle. Illegal transitions come back as 409 with the guard's message.
func UpdateOrderStatusHandler(c *gin.Context) {
	var request UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, ok := fetchOwnedOrder(c, c.Param("order_id"))
	if !ok {
		return
	}

	updated, err := Orders.ApplyStatus(c.Request.Context(), order.ID, request.Status, request.Note)
	if err != nil {
		c.JSON(statusUpdateCode(err), gin.H{"error": err.Error()})
		return
	}

	if Events != nil {
		// Best-effort hook for notification collaborators.
		if err := Events.PublishStatusChanged(updated); err != nil {
			log.Printf("Failed to publish status change for order %s: %v", updated.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"order": viewOf(updated, time.Now())})
}

func statusUpdateCode(err error) int {
	var invalid *orders.InvalidStatusError
	var illegal *orders.TransitionError
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &illegal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DashboardHandler summarizes the establishment's current workload: counts by
// status, today's revenue, urgent backlog, and the most recent orders.
func DashboardHandler(c *gin.Context) {
	establishment, owned := CheckEstablishmentOwnership(c, c.Param("establishment_id"))
	if !owned {
		return
	}

	establishmentID := strconv.FormatUint(uint64(establishment.ID), 10)
	all, err := Orders.FetchOrders(c.Request.Context(), establishmentID, orders.Filters{})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	today := orders.ApplyFilters(all, orders.Filters{Range: orders.RangeToday}, now)

	statusCounts := make(map[orders.Status]int)
	urgent := 0
	for _, o := range all {
		statusCounts[o.Status]++
		if orders.IsUrgent(o, now) {
			urgent++
		}
	}

	var todayRevenue float64
	for _, o := range today {
		if o.Status != orders.StatusCancelled {
			todayRevenue += o.Pricing.Total
		}
	}

	recent := all
	if len(recent) > 5 {
		recent = recent[:5]
	}

	c.JSON(http.StatusOK, gin.H{
		"status_counts": statusCounts,
		"orders_today":  len(today),
		"revenue_today": todayRevenue,
		"urgent_count":  urgent,
		"recent_orders": viewsOf(recent),
	})
}

// fetchOwnedOrder loads an order and verifies the authenticated user owns the
// establishment it belongs to.
func fetchOwnedOrder(c *gin.Context, orderID string) (orders.Order, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return orders.Order{}, false
	}

	order, err := Orders.FetchOrder(c.Request.Context(), orderID)
	if err != nil {
		if err == orders.ErrOrderNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to get order"})
		}
		return orders.Order{}, false
	}

	if order.EstablishmentID == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
		return orders.Order{}, false
	}

	var establishment models.Establishment
	if err := DB.First(&establishment, order.EstablishmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get establishment"})
		}
		return orders.Order{}, false
	}

	if establishment.OwnerID != claims.UserID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You don't own this establishment"})
		return orders.Order{}, false
	}

	return order, true
}
