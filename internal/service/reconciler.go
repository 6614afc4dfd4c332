package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/metrics"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// ReconcileResult is the saved order and what the edit did to it
type ReconcileResult struct {
	Order   *domain.Order
	Removed []domain.RemovedLineItem
	Added   []string
	Skipped []string
}

// OrderReconciler applies line-item edits against the platform's view of an order
type OrderReconciler struct {
	orders  repository.OrderRepository
	gateway RemoteOrderGateway
	policy  domain.EditPolicy
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderReconciler creates a reconciler
func NewOrderReconciler(
	orders repository.OrderRepository,
	gateway RemoteOrderGateway,
	policy domain.EditPolicy,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrderReconciler {
	return &OrderReconciler{
		orders:  orders,
		gateway: gateway,
		policy:  policy,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Reconcile merges the payload's additions and removals into the stored order.
// Nothing is persisted unless both the snapshot and the fulfillment mapping were fetched.
func (r *OrderReconciler) Reconcile(ctx context.Context, payload domain.EditPayload) (*ReconcileResult, error) {
	order, err := liveOrder(ctx, r.orders, payload.OrderID)
	if err != nil {
		r.metrics.ReconcileResult("not_found")
		return nil, err
	}

	snapshot, err := r.gateway.FetchOrderSnapshot(ctx, payload.OrderID)
	if err != nil {
		r.metrics.ReconcileResult("upstream_error")
		r.logger.Error("Failed to fetch order snapshot", zap.String("order_id", payload.OrderID), zap.Error(err))
		return nil, &errors.ErrUpstreamUnavailable{Op: "fetch order snapshot", Err: err}
	}
	mapping, err := r.gateway.FetchFulfillmentMapping(ctx, payload.OrderID)
	if err != nil {
		r.metrics.ReconcileResult("upstream_error")
		r.logger.Error("Failed to fetch fulfillment mapping", zap.String("order_id", payload.OrderID), zap.Error(err))
		return nil, &errors.ErrUpstreamUnavailable{Op: "fetch fulfillment mapping", Err: err}
	}

	var productIDs []string
	for _, add := range payload.LineItems.Additions {
		if remote, ok := snapshot.LineItem(add.ID); ok {
			productIDs = append(productIDs, remote.ProductID)
		}
	}
	vendors := lookupVendors(ctx, r.gateway, productIDs, r.logger)

	now := r.now()
	edit := domain.ApplyEdit(order.LineItems, order.OrderID, snapshot, mapping, vendors, payload.LineItems, r.policy, now)

	saved, err := SaveWithRetry(ctx, order,
		func(ctx context.Context) (*domain.Order, error) {
			return liveOrder(ctx, r.orders, payload.OrderID)
		},
		func(o *domain.Order) {
			o.LineItems = edit.LineItems.Clone()
			o.UpdatedAt = now
		},
		func(ctx context.Context, o *domain.Order) error {
			return r.orders.SaveReconciliation(ctx, o, edit.Removed)
		},
		func() {
			r.metrics.ConflictRetry()
			r.logger.Warn("Order changed during edit, retrying once", zap.String("order_id", payload.OrderID))
		},
	)
	if err != nil {
		if errors.IsConcurrencyConflict(err) {
			r.metrics.ReconcileResult("conflict")
		} else {
			r.metrics.ReconcileResult("error")
		}
		return nil, err
	}

	r.metrics.ReconcileResult("ok")
	r.logger.Info("Reconciled order line items",
		zap.String("order_id", saved.OrderID),
		zap.Strings("added", edit.Added),
		zap.Strings("skipped", edit.Skipped),
		zap.Int("removed", len(edit.Removed)),
		zap.Int("version", saved.Version),
	)
	return &ReconcileResult{
		Order:   saved,
		Removed: edit.Removed,
		Added:   edit.Added,
		Skipped: edit.Skipped,
	}, nil
}

// liveOrder loads an order that has not been soft-deleted
func liveOrder(ctx context.Context, orders repository.OrderRepository, orderID string) (*domain.Order, error) {
	order, err := orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID}
	}
	return order, nil
}
