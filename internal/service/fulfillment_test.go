package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

func newTestCoordinator(orders *fakeOrderRepo, gateway *fakeGateway) *FulfillmentCoordinator {
	return NewFulfillmentCoordinator(orders, gateway, nil, zap.NewNop())
}

func twoItemOrder() *domain.Order {
	return storedOrder("O1", storedItem("L1", 1, "FL1"), storedItem("L2", 2, "FL2"))
}

func TestFulfill_AllItemsPromotesOrder(t *testing.T) {
	orders := newFakeOrderRepo(twoItemOrder())
	gateway := &fakeGateway{}
	c := newTestCoordinator(orders, gateway)

	res, err := c.Fulfill(context.Background(), domain.FulfillmentRequest{
		OrderID:       "O1",
		FulfillmentID: "FO-O1",
		LineItems: []domain.FulfillmentLine{
			{FulfillmentItemID: "FL1", Quantity: 1},
			{FulfillmentItemID: "FL2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"L1", "L2"}, res.Marked)
	assert.Equal(t, domain.OrderFulfilled, res.Order.FulfillmentStatus)

	stored := orders.stored("O1")
	for _, item := range stored.LineItems.All() {
		assert.Equal(t, domain.LineItemFulfilled, item.FulfillmentStatus)
	}
	assert.Equal(t, domain.OrderFulfilled, stored.FulfillmentStatus)
	require.Len(t, gateway.fulfilled, 1)
}

func TestFulfill_PartialLeavesOrderStatus(t *testing.T) {
	orders := newFakeOrderRepo(twoItemOrder())
	c := newTestCoordinator(orders, &fakeGateway{})

	res, err := c.Fulfill(context.Background(), domain.FulfillmentRequest{
		OrderID:       "O1",
		FulfillmentID: "FO-O1",
		LineItems:     []domain.FulfillmentLine{{FulfillmentItemID: "FL1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, res.Marked)
	assert.Equal(t, domain.FulfillmentStatus(""), res.Order.FulfillmentStatus)

	l2, _ := orders.stored("O1").LineItems.Get("L2")
	assert.Equal(t, domain.FulfillmentStatus(""), l2.FulfillmentStatus)
}

func TestFulfill_RejectionChangesNothing(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{name: "user errors", err: &errors.ErrFulfillmentRejected{Reasons: []string{"quantity exceeds"}}, wantReason: "quantity exceeds"},
		{name: "transport", err: stderrors.New("connection reset"), wantReason: "connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newFakeOrderRepo(twoItemOrder())
			c := newTestCoordinator(orders, &fakeGateway{fulfillErr: tt.err})

			_, err := c.Fulfill(context.Background(), domain.FulfillmentRequest{
				OrderID:       "O1",
				FulfillmentID: "FO-O1",
				LineItems:     []domain.FulfillmentLine{{FulfillmentItemID: "FL1", Quantity: 1}},
			})
			require.Error(t, err)
			assert.Equal(t, errors.KindFulfillmentRejected, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantReason)
			assert.Equal(t, 0, orders.saves)
		})
	}
}

func TestFulfill_Validation(t *testing.T) {
	orders := newFakeOrderRepo(twoItemOrder())
	c := newTestCoordinator(orders, &fakeGateway{})
	ctx := context.Background()

	_, err := c.Fulfill(ctx, domain.FulfillmentRequest{OrderID: "O1", FulfillmentID: "FO-O1"})
	assert.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))

	_, err = c.Fulfill(ctx, domain.FulfillmentRequest{
		OrderID:   "O1",
		LineItems: []domain.FulfillmentLine{{FulfillmentItemID: "FL1", Quantity: 1}},
	})
	assert.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))

	_, err = c.Fulfill(ctx, domain.FulfillmentRequest{
		OrderID:       "nope",
		FulfillmentID: "FO-O1",
		LineItems:     []domain.FulfillmentLine{{FulfillmentItemID: "FL1", Quantity: 1}},
	})
	assert.True(t, errors.IsNotFound(err))
}

func TestFulfillSingle_RequiresEveryField(t *testing.T) {
	orders := newFakeOrderRepo(twoItemOrder())
	gateway := &fakeGateway{}
	c := newTestCoordinator(orders, gateway)

	_, err := c.FulfillSingle(context.Background(), domain.SingleFulfillmentRequest{
		OrderID:       "O1",
		FulfillmentID: "FO-O1",
	})
	require.Error(t, err)
	var verr *errors.ErrValidation
	require.True(t, stderrors.As(err, &verr))
	assert.Contains(t, verr.Fields, "FulfillmentItemID")
	assert.Contains(t, verr.Fields, "Quantity")
	assert.Empty(t, gateway.fulfilled)

	res, err := c.FulfillSingle(context.Background(), domain.SingleFulfillmentRequest{
		OrderID:           "O1",
		FulfillmentID:     "FO-O1",
		FulfillmentItemID: "FL2",
		Quantity:          2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, res.Marked)
}

func TestFulfillRemaining(t *testing.T) {
	order := twoItemOrder()
	order.LineItems.Update("L1", func(li *domain.LineItem) { li.FulfillmentStatus = domain.LineItemFulfilled })
	orders := newFakeOrderRepo(order)
	gateway := &fakeGateway{}
	c := newTestCoordinator(orders, gateway)

	res, err := c.FulfillRemaining(context.Background(), "O1")
	require.NoError(t, err)
	require.Len(t, gateway.fulfilled, 1)
	assert.Equal(t, []domain.FulfillmentLine{{FulfillmentItemID: "FL2", Quantity: 2}}, gateway.fulfilled[0])
	assert.Equal(t, domain.OrderFulfilled, res.Order.FulfillmentStatus)

	_, err = c.FulfillRemaining(context.Background(), "O1")
	assert.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}
