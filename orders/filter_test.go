package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkOrder(id string, status Status, createdAt time.Time) Order {
	return Order{
		ID:           id,
		OrderNumber:  "ORD-" + id,
		CustomerName: "Customer " + id,
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestApplyFiltersComposition(t *testing.T) {
	today := testNow.Add(-2 * time.Hour)
	lastWeek := testNow.AddDate(0, 0, -3)

	// Ten orders across three statuses and two date buckets.
	fixture := []Order{
		mkOrder("1", StatusReady, today),
		mkOrder("2", StatusPlaced, today),
		mkOrder("3", StatusReady, lastWeek),
		mkOrder("4", StatusDelivered, today),
		mkOrder("5", StatusReady, today),
		mkOrder("6", StatusPlaced, lastWeek),
		mkOrder("7", StatusDelivered, lastWeek),
		mkOrder("8", StatusReady, lastWeek),
		mkOrder("9", StatusPlaced, today),
		mkOrder("10", StatusReady, today),
	}

	got := ApplyFilters(fixture, Filters{Status: StatusReady, Range: RangeToday}, testNow)

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "5", got[1].ID)
	assert.Equal(t, "10", got[2].ID, "input order is preserved")
}

func TestApplyFiltersSearch(t *testing.T) {
	fixture := []Order{
		{ID: "1", OrderNumber: "ORD-77", CustomerName: "Asha"},
		{ID: "2", OrderNumber: "ORD-12", CustomerName: "Ravi Kumar"},
		{ID: "3", OrderNumber: "ORD-13", Items: []OrderItem{{Name: "Masala Dosa"}}},
	}

	byNumber := ApplyFilters(fixture, Filters{Search: "77"}, testNow)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "1", byNumber[0].ID)

	byName := ApplyFilters(fixture, Filters{Search: "ravi"}, testNow)
	require.Len(t, byName, 1)
	assert.Equal(t, "2", byName[0].ID)

	byItem := ApplyFilters(fixture, Filters{Search: "DOSA"}, testNow)
	require.Len(t, byItem, 1)
	assert.Equal(t, "3", byItem[0].ID)

	all := ApplyFilters(fixture, Filters{Search: "  "}, testNow)
	assert.Len(t, all, 3, "blank search passes everything")
}

func TestApplyFiltersDateRanges(t *testing.T) {
	y, m, d := testNow.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, testNow.Location())

	fixture := []Order{
		mkOrder("midnight", StatusPlaced, midnight),
		mkOrder("justBefore", StatusPlaced, midnight.Add(-time.Second)),
		mkOrder("sixDays", StatusPlaced, testNow.AddDate(0, 0, -6)),
		mkOrder("threeWeeks", StatusPlaced, testNow.AddDate(0, 0, -21)),
		mkOrder("twoMonths", StatusPlaced, testNow.AddDate(0, -2, 0)),
	}

	todayIDs := idsOf(ApplyFilters(fixture, Filters{Range: RangeToday}, testNow))
	assert.Equal(t, []string{"midnight"}, todayIDs, "today's lower bound is inclusive local midnight")

	weekIDs := idsOf(ApplyFilters(fixture, Filters{Range: RangeWeek}, testNow))
	assert.Equal(t, []string{"midnight", "justBefore", "sixDays"}, weekIDs)

	monthIDs := idsOf(ApplyFilters(fixture, Filters{Range: RangeMonth}, testNow))
	assert.Equal(t, []string{"midnight", "justBefore", "sixDays", "threeWeeks"}, monthIDs)

	allIDs := idsOf(ApplyFilters(fixture, Filters{Range: RangeAll}, testNow))
	assert.Len(t, allIDs, len(fixture))
}

func TestApplyFiltersStatusAll(t *testing.T) {
	fixture := []Order{
		mkOrder("1", StatusPlaced, testNow),
		mkOrder("2", StatusCancelled, testNow),
	}

	assert.Len(t, ApplyFilters(fixture, Filters{Status: StatusAll}, testNow), 2)
	assert.Len(t, ApplyFilters(fixture, Filters{}, testNow), 2)

	cancelled := ApplyFilters(fixture, Filters{Status: StatusCancelled}, testNow)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "2", cancelled[0].ID)
}

func idsOf(list []Order) []string {
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	return ids
}
