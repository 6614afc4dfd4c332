package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type orderService struct {
	orders      repository.OrderRepository
	gateway     RemoteOrderGateway
	reconciler  *OrderReconciler
	fulfillment *FulfillmentCoordinator
	timeline    *TimelineService
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService creates the order lifecycle service. Every successful operation
// appends a timeline entry.
func NewOrderService(
	orders repository.OrderRepository,
	gateway RemoteOrderGateway,
	reconciler *OrderReconciler,
	fulfillment *FulfillmentCoordinator,
	timeline *TimelineService,
	logger *zap.Logger,
) *orderService {
	return &orderService{
		orders:      orders,
		gateway:     gateway,
		reconciler:  reconciler,
		fulfillment: fulfillment,
		timeline:    timeline,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateFromSnapshot stores a platform order seen for the first time. It reports
// created=false for an order that already exists soft-deleted, and a conflict for an
// active one.
func (s *orderService) CreateFromSnapshot(ctx context.Context, snapshot *domain.OrderSnapshot, actor string) (*domain.Order, bool, error) {
	if snapshot == nil || snapshot.ID == "" {
		return nil, false, &errors.ErrValidation{Message: "order id is required"}
	}

	existing, err := s.orders.GetByOrderID(ctx, snapshot.ID)
	switch {
	case err == nil && existing.IsDeleted():
		s.logger.Info("Ignoring create for soft-deleted order", zap.String("order_id", snapshot.ID))
		return existing, false, nil
	case err == nil:
		return nil, false, &errors.ErrConflict{Message: "order already exists: " + snapshot.ID}
	case !errors.IsNotFound(err):
		return nil, false, err
	}

	mapping, err := s.gateway.FetchFulfillmentMapping(ctx, snapshot.ID)
	if err != nil {
		s.logger.Error("Failed to fetch fulfillment mapping", zap.String("order_id", snapshot.ID), zap.Error(err))
		return nil, false, &errors.ErrUpstreamUnavailable{Op: "fetch fulfillment mapping", Err: err}
	}

	productIDs := make([]string, 0, len(snapshot.LineItems))
	for _, item := range snapshot.LineItems {
		productIDs = append(productIDs, item.ProductID)
	}
	vendors := lookupVendors(ctx, s.gateway, productIDs, s.logger)

	order := domain.NewOrderFromSnapshot(snapshot, mapping, vendors, s.now())
	s.logger.Info("Creating order", zap.String("order_id", order.OrderID), zap.Int("line_items", order.LineItems.Len()))
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, false, err
	}

	s.record(ctx, order.OrderID, domain.TimelineCreated, actor, map[string]interface{}{
		"line_items": order.LineItems.Len(),
		"total":      order.TotalPrice.String(),
	}, "Order created")
	return order, true, nil
}

// Import fetches an order from the platform and stores it
func (s *orderService) Import(ctx context.Context, orderID, actor string) (*domain.Order, bool, error) {
	snapshot, err := s.gateway.FetchOrderSnapshot(ctx, orderID)
	if err != nil {
		return nil, false, &errors.ErrUpstreamUnavailable{Op: "fetch order snapshot", Err: err}
	}
	return s.CreateFromSnapshot(ctx, snapshot, actor)
}

// Edit reconciles line-item additions and removals
func (s *orderService) Edit(ctx context.Context, payload domain.EditPayload, actor string) (*ReconcileResult, error) {
	result, err := s.reconciler.Reconcile(ctx, payload)
	if err != nil {
		return nil, err
	}

	removed := make(map[string]interface{}, len(result.Removed))
	for _, r := range result.Removed {
		removed[r.LineItemID] = r.Quantity
	}
	s.record(ctx, payload.OrderID, domain.TimelineUpdated, actor, map[string]interface{}{
		"added":   result.Added,
		"removed": removed,
		"skipped": result.Skipped,
	}, "Order line items updated")
	return result, nil
}

// Fulfill submits a fulfillment
func (s *orderService) Fulfill(ctx context.Context, req domain.FulfillmentRequest, actor string) (*FulfillmentResult, error) {
	result, err := s.fulfillment.Fulfill(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordFulfillment(ctx, req.FulfillmentID, result, actor)
	return result, nil
}

// FulfillSingle submits a fulfillment for one item
func (s *orderService) FulfillSingle(ctx context.Context, req domain.SingleFulfillmentRequest, actor string) (*FulfillmentResult, error) {
	result, err := s.fulfillment.FulfillSingle(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordFulfillment(ctx, req.FulfillmentID, result, actor)
	return result, nil
}

// FulfillRemaining fulfills whatever is left open on the order
func (s *orderService) FulfillRemaining(ctx context.Context, orderID, actor string) (*FulfillmentResult, error) {
	result, err := s.fulfillment.FulfillRemaining(ctx, orderID)
	if err != nil {
		return nil, err
	}
	fulfillmentID := ""
	if result.Order.FulfillmentID != nil {
		fulfillmentID = *result.Order.FulfillmentID
	}
	s.recordFulfillment(ctx, fulfillmentID, result, actor)
	return result, nil
}

func (s *orderService) recordFulfillment(ctx context.Context, fulfillmentID string, result *FulfillmentResult, actor string) {
	s.record(ctx, result.Order.OrderID, domain.TimelineFulfilled, actor, map[string]interface{}{
		"fulfillment_id":     fulfillmentID,
		"line_items":         result.Marked,
		"fulfillment_status": result.Order.FulfillmentStatus.String(),
	}, "Order fulfilled")
}

// Cancel marks the order cancelled and soft-deletes its active line items.
// Removed quantities are not accounted for a cancellation.
func (s *orderService) Cancel(ctx context.Context, orderID string, req CancelRequest, actor string) (*domain.Order, error) {
	order, err := liveOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cancelledAt := now
	if req.CancelledAt != nil {
		cancelledAt = *req.CancelledAt
	}
	reason := strings.TrimSpace(req.CancelReason)
	financial, hasFinancial := domain.ParseFinancialStatus(req.FinancialStatus)

	saved, err := SaveWithRetry(ctx, order,
		func(ctx context.Context) (*domain.Order, error) { return liveOrder(ctx, s.orders, orderID) },
		func(o *domain.Order) {
			o.CancelledAt = &cancelledAt
			if reason != "" {
				o.CancelReason = &reason
			}
			if hasFinancial {
				o.FinancialStatus = financial
			}
			for _, item := range o.LineItems.Active() {
				o.LineItems.Update(item.ID, func(li *domain.LineItem) {
					deleted := now
					li.DeletedDate = &deleted
				})
			}
		},
		s.orders.Update,
		nil,
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancelled order", zap.String("order_id", orderID), zap.String("reason", reason))
	s.record(ctx, orderID, domain.TimelineCancelled, actor, map[string]interface{}{
		"cancel_reason":    reason,
		"cancelled_at":     cancelledAt,
		"financial_status": saved.FinancialStatus.String(),
	}, "Order cancelled")
	return saved, nil
}

// MarkPaid syncs payment and fulfillment statuses reported by the platform
func (s *orderService) MarkPaid(ctx context.Context, orderID string, update StatusUpdate, actor string) (*domain.Order, error) {
	order, err := liveOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	financial, hasFinancial := domain.ParseFinancialStatus(update.FinancialStatus)
	fulfillment, hasFulfillment := domain.ParseFulfillmentStatus(update.FulfillmentStatus)
	currency := strings.TrimSpace(update.Currency)
	if hasFinancial {
		changes["financial_status"] = financial.String()
	}
	if hasFulfillment {
		changes["fulfillment_status"] = fulfillment.String()
	}
	if currency != "" {
		changes["currency"] = currency
	}

	now := s.now()
	saved, err := SaveWithRetry(ctx, order,
		func(ctx context.Context) (*domain.Order, error) { return liveOrder(ctx, s.orders, orderID) },
		func(o *domain.Order) {
			if hasFinancial {
				o.FinancialStatus = financial
			}
			if hasFulfillment {
				o.FulfillmentStatus = fulfillment
			}
			if currency != "" {
				o.Currency = currency
			}
			for _, li := range update.LineItems {
				status, ok := domain.ParseFulfillmentStatus(li.FulfillmentStatus)
				if !ok {
					continue
				}
				o.LineItems.Update(li.ID, func(item *domain.LineItem) { item.FulfillmentStatus = status })
			}
			o.UpdatedAt = now
		},
		s.orders.Update,
		nil,
	)
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, domain.TimelineMarkedPaid, actor, changes, "Order payment status updated")
	return saved, nil
}

// SoftDelete hides the order from listings; it is never removed from storage
func (s *orderService) SoftDelete(ctx context.Context, orderID, actor string) (*DeleteResult, error) {
	order, err := liveOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}

	deletedAt := s.now()
	if _, err := SaveWithRetry(ctx, order,
		func(ctx context.Context) (*domain.Order, error) { return liveOrder(ctx, s.orders, orderID) },
		func(o *domain.Order) { o.DeletedAt = &deletedAt },
		s.orders.Update,
		nil,
	); err != nil {
		return nil, err
	}

	s.logger.Info("Soft-deleted order", zap.String("order_id", orderID))
	s.record(ctx, orderID, domain.TimelineDeleted, actor, map[string]interface{}{
		"deleted_at": deletedAt,
	}, "Order deleted")
	return &DeleteResult{OrderID: orderID, DeletedAt: deletedAt}, nil
}

// record appends a timeline entry for an operation that already committed, so a
// failure is logged rather than returned.
func (s *orderService) record(ctx context.Context, orderID string, action domain.TimelineAction, actor string, changes map[string]interface{}, message string) {
	if _, err := s.timeline.Record(ctx, orderID, action, actor, changes, message); err != nil {
		s.logger.Error("Timeline entry lost", zap.String("order_id", orderID), zap.String("action", string(action)), zap.Error(err))
	}
}
