package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func seedEstablishmentOrders(src *memorySource) {
	// Deliberately out of creation order.
	src.add("o2", bson.M{"establishmentId": "7", "status": "confirmed", "createdAt": testNow.Add(-5 * time.Minute)})
	src.add("o1", bson.M{"establishmentId": "7", "status": "placed", "createdAt": testNow.Add(-20 * time.Minute)})
	src.add("o3", bson.M{"establishmentId": "7", "status": "delivered", "createdAt": testNow.AddDate(0, 0, -1)})
	src.add("x1", bson.M{"establishmentId": "8", "status": "placed", "createdAt": testNow})
}

func TestFetchOrdersSortedDescending(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	svc := newTestService(src, testNow)

	got, err := svc.FetchOrders(context.Background(), "7", Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"o2", "o1", "o3"}, idsOf(got))
	assert.Equal(t, 1, src.queryCount(), "optimal tier is enough")
}

func TestFetchOrdersCapabilityFallbackEquivalence(t *testing.T) {
	optimal := newMemorySource()
	seedEstablishmentOrders(optimal)
	optimalGot, err := newTestService(optimal, testNow).FetchOrders(context.Background(), "7", Filters{})
	require.NoError(t, err)

	degraded := newMemorySource()
	seedEstablishmentOrders(degraded)
	degraded.failSort = true
	degradedGot, err := newTestService(degraded, testNow).FetchOrders(context.Background(), "7", Filters{})
	require.NoError(t, err)

	assert.Equal(t, optimalGot, degradedGot,
		"the degraded path returns the same orders in the same final order")
	assert.Equal(t, 2, degraded.queryCount())
	assert.False(t, degraded.queries[1].SortDesc, "fallback drops server-side ordering")
}

func TestFetchOrdersSecondTierFailureFallsToEstablishmentOnly(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	src.failSort = true
	src.tier2Err = errors.New("transient read failure")
	svc := newTestService(src, testNow)

	got, err := svc.FetchOrders(context.Background(), "7", Filters{Status: StatusPlaced})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, idsOf(got),
		"status filtering still applies client-side after the establishment-only tier")

	require.Equal(t, 3, src.queryCount())
	assert.Equal(t, Query{EstablishmentID: "7", Status: StatusPlaced, SortDesc: true}, src.queries[0])
	assert.Equal(t, Query{EstablishmentID: "7", Status: StatusPlaced}, src.queries[1])
	assert.Equal(t, Query{EstablishmentID: "7"}, src.queries[2])
}

func TestFetchOrdersHardFailureSurfaces(t *testing.T) {
	src := newMemorySource()
	src.hardErr = errors.New("connection reset")
	svc := newTestService(src, testNow)

	_, err := svc.FetchOrders(context.Background(), "7", Filters{})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "7", fetchErr.EstablishmentID)
	assert.Equal(t, 1, src.queryCount(), "a hard first-attempt failure is not retried")
}

func TestFetchOrdersStatusAllQueriesUnfiltered(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	svc := newTestService(src, testNow)

	got, err := svc.FetchOrders(context.Background(), "7", Filters{Status: StatusAll})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, Status(""), src.queries[0].Status)
}

func TestFetchOrderNormalizes(t *testing.T) {
	src := newMemorySource()
	src.add("o1", bson.M{
		"establishmentId": "7",
		"items":           bson.A{bson.M{"menuItem": bson.M{"name": "Idli", "price": 60.0}, "quantity": 2}},
	})
	svc := newTestService(src, testNow)

	got, err := svc.FetchOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "Idli", got.Items[0].Name)
	assert.Equal(t, StatusPlaced, got.Status)

	_, err = svc.FetchOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func collectSnapshots(t *testing.T) (func([]Order), chan []Order) {
	t.Helper()
	ch := make(chan []Order, 16)
	return func(list []Order) { ch <- list }, ch
}

func awaitSnapshot(t *testing.T, ch chan []Order) []Order {
	t.Helper()
	select {
	case list := <-ch:
		return list
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a subscription delivery")
		return nil
	}
}

func TestSubscribeDeliversInitialAndOnChange(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	svc := newTestService(src, testNow)

	onUpdate, snapshots := collectSnapshots(t)
	unsubscribe := svc.SubscribeOrders(context.Background(), "7", Filters{}, onUpdate)
	defer unsubscribe()

	initial := awaitSnapshot(t, snapshots)
	assert.Equal(t, []string{"o2", "o1", "o3"}, idsOf(initial))

	src.add("o4", bson.M{"establishmentId": "7", "status": "placed", "createdAt": testNow})
	src.notify()

	next := awaitSnapshot(t, snapshots)
	assert.Equal(t, []string{"o4", "o2", "o1", "o3"}, idsOf(next),
		"each delivery is a full replacement list, newest first")
}

func TestSubscribeAppliesFilters(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	svc := newTestService(src, testNow)

	onUpdate, snapshots := collectSnapshots(t)
	unsubscribe := svc.SubscribeOrders(context.Background(), "7", Filters{Range: RangeToday}, onUpdate)
	defer unsubscribe()

	initial := awaitSnapshot(t, snapshots)
	assert.Equal(t, []string{"o2", "o1"}, idsOf(initial), "yesterday's delivery is excluded")
}

func TestSubscribeHardFailureDeliversEmptyList(t *testing.T) {
	src := newMemorySource()
	src.hardErr = errors.New("connection reset")
	svc := newTestService(src, testNow)

	onUpdate, snapshots := collectSnapshots(t)
	unsubscribe := svc.SubscribeOrders(context.Background(), "7", Filters{}, onUpdate)
	defer unsubscribe()

	initial := awaitSnapshot(t, snapshots)
	assert.Empty(t, initial, "subscriptions degrade to no data instead of failing")
}

func TestSubscribeWatchFailureDeliversEmptyList(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	src.watchErr = errors.New("change streams unavailable")
	svc := newTestService(src, testNow)

	onUpdate, snapshots := collectSnapshots(t)
	unsubscribe := svc.SubscribeOrders(context.Background(), "7", Filters{}, onUpdate)
	defer unsubscribe()

	first := awaitSnapshot(t, snapshots)
	assert.Len(t, first, 3, "the initial snapshot still goes out")

	second := awaitSnapshot(t, snapshots)
	assert.Empty(t, second, "the failed watch is reported as no data, not an error")
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	src := newMemorySource()
	seedEstablishmentOrders(src)
	svc := newTestService(src, testNow)

	onUpdate, snapshots := collectSnapshots(t)
	unsubscribe := svc.SubscribeOrders(context.Background(), "7", Filters{}, onUpdate)

	awaitSnapshot(t, snapshots)
	unsubscribe()
	unsubscribe() // safe to call twice

	// Give the subscription goroutine a moment to observe cancellation,
	// then confirm changes no longer reach the callback.
	time.Sleep(50 * time.Millisecond)
	src.notify()

	select {
	case list := <-snapshots:
		t.Fatalf("unexpected delivery after unsubscribe: %v", idsOf(list))
	case <-time.After(200 * time.Millisecond):
	}
}

func TestOrderLifecycleScenario(t *testing.T) {
	src := newMemorySource()
	src.add("O1", bson.M{
		"establishmentId": "E1", "status": "placed",
		"createdAt": testNow.Add(-20 * time.Minute),
		"timeline":  bson.A{bson.M{"status": "placed", "timestamp": testNow.Add(-20 * time.Minute)}},
	})
	src.add("O2", bson.M{
		"establishmentId": "E1", "status": "confirmed",
		"createdAt": testNow.Add(-5 * time.Minute),
	})
	src.add("O3", bson.M{
		"establishmentId": "E1", "status": "delivered",
		"createdAt": testNow.AddDate(0, 0, -1),
	})
	svc := newTestService(src, testNow)

	todays, err := svc.FetchOrders(context.Background(), "E1", Filters{Range: RangeToday})
	require.NoError(t, err)
	assert.Equal(t, []string{"O2", "O1"}, idsOf(todays))

	o1, ok := func() (Order, bool) {
		for _, o := range todays {
			if o.ID == "O1" {
				return o, true
			}
		}
		return Order{}, false
	}()
	require.True(t, ok)
	assert.True(t, IsUrgent(o1, testNow), "a placed order from 20 minutes ago is urgent")

	confirmed, err := svc.ApplyStatus(context.Background(), "O1", StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Len(t, confirmed.Timeline, 2)

	_, err = svc.ApplyStatus(context.Background(), "O1", StatusReady, "")
	var illegal *TransitionError
	require.ErrorAs(t, err, &illegal, "ready requires passing through preparing first")
	assert.Equal(t, "Cannot change status from confirmed to ready", err.Error())
}
