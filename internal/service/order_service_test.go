package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type orderServiceFixture struct {
	orders   *fakeOrderRepo
	timeline *fakeTimelineRepo
	gateway  *fakeGateway
	svc      *orderService
}

func newOrderServiceFixture(orders ...*domain.Order) *orderServiceFixture {
	f := &orderServiceFixture{
		orders:   newFakeOrderRepo(orders...),
		timeline: &fakeTimelineRepo{},
		gateway:  &fakeGateway{snapshot: &domain.OrderSnapshot{ID: "O1"}},
	}
	logger := zap.NewNop()
	f.svc = NewOrderService(
		f.orders,
		f.gateway,
		newTestReconciler(f.orders, f.gateway),
		newTestCoordinator(f.orders, f.gateway),
		NewTimelineService(f.timeline, nil, logger),
		logger,
	)
	return f
}

func TestCreateFromSnapshot(t *testing.T) {
	f := newOrderServiceFixture()
	f.gateway.mapping = domain.FulfillmentMapping{FulfillmentOrderID: "FO9", Items: map[string]string{"L1": "FL1"}}
	f.gateway.vendors = map[string]domain.VendorMetadata{"PL1": {VendorID: "vendor-1", VendorName: "Acme"}}

	snapshot := &domain.OrderSnapshot{
		ID:              "O1",
		Name:            "#1001",
		FinancialStatus: "pending",
		PaymentGateway:  "cod",
		LineItems:       []domain.SnapshotLineItem{snapshotItem("L1", 3), snapshotItem("L0", 0)},
	}
	order, created, err := f.svc.CreateFromSnapshot(context.Background(), snapshot, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, order.LineItems.Len())
	require.NotNil(t, order.FulfillmentID)
	assert.Equal(t, "FO9", *order.FulfillmentID)

	item, _ := f.orders.stored("O1").LineItems.Get("L1")
	assert.Equal(t, "vendor-1", item.VendorID)
	require.NotNil(t, item.FulfillmentItemID)
	assert.Equal(t, "FL1", *item.FulfillmentItemID)

	assert.Equal(t, []domain.TimelineAction{domain.TimelineCreated}, f.timeline.actions("O1"))
	assert.Equal(t, domain.DefaultActor, f.timeline.entries[0].PerformedBy)
}

func TestCreateFromSnapshot_ExistingOrders(t *testing.T) {
	deletedAt := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	deleted := storedOrder("O2")
	deleted.DeletedAt = &deletedAt
	f := newOrderServiceFixture(storedOrder("O1"), deleted)
	ctx := context.Background()

	_, _, err := f.svc.CreateFromSnapshot(ctx, &domain.OrderSnapshot{ID: "O1"}, "")
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))

	order, created, err := f.svc.CreateFromSnapshot(ctx, &domain.OrderSnapshot{ID: "O2"}, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, order.IsDeleted())
	assert.Empty(t, f.timeline.entries)
}

func TestCreateFromSnapshot_MappingFailure(t *testing.T) {
	f := newOrderServiceFixture()
	f.gateway.mappingErr = stderrors.New("throttled")

	_, _, err := f.svc.CreateFromSnapshot(context.Background(), &domain.OrderSnapshot{ID: "O1"}, "")
	assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
	_, err = f.orders.GetByOrderID(context.Background(), "O1")
	assert.True(t, errors.IsNotFound(err))
}

func TestEdit_AppendsTimeline(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1", storedItem("L1", 5, "")))

	res, err := f.svc.Edit(context.Background(), removal("L1", 2), "ops@menahub.test")
	require.NoError(t, err)
	item, _ := res.Order.LineItems.Get("L1")
	assert.Equal(t, 3, item.Quantity)

	require.Len(t, f.timeline.entries, 1)
	entry := f.timeline.entries[0]
	assert.Equal(t, domain.TimelineUpdated, entry.Action)
	assert.Equal(t, "ops@menahub.test", entry.PerformedBy)
	assert.Equal(t, map[string]interface{}{"L1": 2}, entry.Changes["removed"])
}

func TestEdit_FailureAppendsNothing(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1", storedItem("L1", 5, "")))
	f.gateway.snapshotErr = stderrors.New("down")

	_, err := f.svc.Edit(context.Background(), removal("L1", 2), "")
	require.Error(t, err)
	assert.Empty(t, f.timeline.entries)
}

func TestCancel(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1", storedItem("L1", 5, ""), storedItem("L2", 1, "")))
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	order, err := f.svc.Cancel(context.Background(), "O1", CancelRequest{
		CancelReason:    "customer",
		CancelledAt:     &at,
		FinancialStatus: "voided",
	}, "")
	require.NoError(t, err)
	require.NotNil(t, order.CancelledAt)
	assert.Equal(t, at, *order.CancelledAt)
	assert.Equal(t, "customer", *order.CancelReason)
	assert.Equal(t, domain.FinancialStatus("voided"), order.FinancialStatus)
	assert.Empty(t, order.LineItems.Active())
	assert.Equal(t, 2, order.LineItems.Len())
	assert.Equal(t, 0, f.orders.removedQty("O1", "L1"))
	assert.Equal(t, []domain.TimelineAction{domain.TimelineCancelled}, f.timeline.actions("O1"))

	_, err = f.svc.Cancel(context.Background(), "missing", CancelRequest{}, "")
	assert.True(t, errors.IsNotFound(err))
}

func TestMarkPaid(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1", storedItem("L1", 5, ""), storedItem("L2", 1, "")))

	order, err := f.svc.MarkPaid(context.Background(), "O1", StatusUpdate{
		FinancialStatus: " paid ",
		Currency:        "",
		LineItems: []LineItemStatus{
			{ID: "L2", FulfillmentStatus: "fulfilled"},
			{ID: "unknown", FulfillmentStatus: "fulfilled"},
		},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.FinancialStatus("paid"), order.FinancialStatus)
	assert.Equal(t, "AED", order.Currency)

	l1, _ := order.LineItems.Get("L1")
	l2, _ := order.LineItems.Get("L2")
	assert.Equal(t, domain.FulfillmentStatus(""), l1.FulfillmentStatus)
	assert.Equal(t, domain.LineItemFulfilled, l2.FulfillmentStatus)

	require.Len(t, f.timeline.entries, 1)
	assert.Equal(t, domain.TimelineMarkedPaid, f.timeline.entries[0].Action)
	assert.Equal(t, map[string]interface{}{"financial_status": "paid"}, f.timeline.entries[0].Changes)
}

func TestSoftDelete(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1"))
	ctx := context.Background()

	res, err := f.svc.SoftDelete(ctx, "O1", "")
	require.NoError(t, err)
	assert.Equal(t, "O1", res.OrderID)
	assert.True(t, f.orders.stored("O1").IsDeleted())

	_, err = f.svc.SoftDelete(ctx, "O1", "")
	assert.True(t, errors.IsNotFound(err))
	_, err = f.svc.SoftDelete(ctx, "missing", "")
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, []domain.TimelineAction{domain.TimelineDeleted}, f.timeline.actions("O1"))
}

func TestFulfill_AppendsTimeline(t *testing.T) {
	f := newOrderServiceFixture(twoItemOrder())

	_, err := f.svc.FulfillRemaining(context.Background(), "O1", "")
	require.NoError(t, err)
	require.Len(t, f.timeline.entries, 1)
	assert.Equal(t, domain.TimelineFulfilled, f.timeline.entries[0].Action)
	assert.Equal(t, "FO-O1", f.timeline.entries[0].Changes["fulfillment_id"])
}

func TestTimelineFailureDoesNotFailOperation(t *testing.T) {
	f := newOrderServiceFixture(storedOrder("O1"))
	f.timeline.err = stderrors.New("disk full")

	_, err := f.svc.SoftDelete(context.Background(), "O1", "")
	assert.NoError(t, err)
}
