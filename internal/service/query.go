package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type queryService struct {
	repos    *repository.Repositories
	timeline *TimelineService
	logger   *zap.Logger
}

// NewQueryService creates the read side over stored orders
func NewQueryService(repos *repository.Repositories, timeline *TimelineService, logger *zap.Logger) *queryService {
	return &queryService{
		repos:    repos,
		timeline: timeline,
		logger:   logger,
	}
}

// normalizePage applies the default page and limit and caps the limit
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ListOrders returns a page of orders, newest first
func (s *queryService) ListOrders(ctx context.Context, q ListOrdersQuery) (*OrderPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	orders, total, err := s.repos.Order.List(ctx, repository.OrderFilter{
		FinancialStatus:   q.FinancialStatus,
		FulfillmentStatus: q.FulfillmentStatus,
		IncludeDeleted:    q.IncludeDeleted,
		Limit:             limit,
		Offset:            (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return &OrderPage{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
		Orders:     orders,
	}, nil
}

// GetOrder returns one order, soft-deleted ones included
func (s *queryService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repos.Order.GetByOrderID(ctx, orderID)
}

// VendorLineItems pages over orders holding a line item of the vendor and flattens
// their active items of that vendor.
func (s *queryService) VendorLineItems(ctx context.Context, vendorID string, page, limit int) (*VendorLineItemPage, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.repos.Order.ListByVendor(ctx, vendorID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	items := []VendorLineItem{}
	for _, order := range orders {
		for _, item := range order.LineItems.Active() {
			if item.VendorID != vendorID {
				continue
			}
			items = append(items, VendorLineItem{
				LineItem:        item,
				OrderID:         order.OrderID,
				OrderNumber:     order.OrderNumber,
				PaymentGateway:  order.PaymentGateway,
				FulfillmentID:   order.FulfillmentID,
				ShippingAddress: order.ShippingAddress,
				Customer:        order.Customer,
			})
		}
	}
	return &VendorLineItemPage{
		TotalOrders: total,
		TotalPages:  totalPages(total, limit),
		Page:        page,
		Limit:       limit,
		LineItems:   items,
	}, nil
}

// Timeline returns the audit trail of an order, newest first
func (s *queryService) Timeline(ctx context.Context, orderID string) ([]*domain.OrderTimelineEntry, error) {
	if _, err := s.repos.Order.GetByOrderID(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := s.timeline.List(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.OrderTimelineEntry{}
	}
	return entries, nil
}

// RemovedItems returns the accumulated removed quantities of an order
func (s *queryService) RemovedItems(ctx context.Context, orderID string) ([]*domain.RemovedLineItem, error) {
	if _, err := s.repos.Order.GetByOrderID(ctx, orderID); err != nil {
		return nil, err
	}
	items, err := s.repos.RemovedLineItem.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.RemovedLineItem{}
	}
	return items, nil
}
