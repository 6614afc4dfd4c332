package service

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/metrics"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// FulfillmentResult is the saved order and the line items marked fulfilled
type FulfillmentResult struct {
	Order  *domain.Order
	Marked []string
}

// FulfillmentCoordinator submits fulfillments to the platform and reflects them locally
type FulfillmentCoordinator struct {
	orders   repository.OrderRepository
	gateway  RemoteOrderGateway
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewFulfillmentCoordinator creates a coordinator
func NewFulfillmentCoordinator(
	orders repository.OrderRepository,
	gateway RemoteOrderGateway,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FulfillmentCoordinator {
	return &FulfillmentCoordinator{
		orders:   orders,
		gateway:  gateway,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
	}
}

// Fulfill asks the platform to fulfill the given lines and, only once it accepted,
// marks the matching local line items fulfilled.
func (c *FulfillmentCoordinator) Fulfill(ctx context.Context, req domain.FulfillmentRequest) (*FulfillmentResult, error) {
	if len(req.LineItems) == 0 {
		return nil, &errors.ErrValidation{Message: "at least one line item is required"}
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	order, err := liveOrder(ctx, c.orders, req.OrderID)
	if err != nil {
		return nil, err
	}

	if err := c.gateway.CreateFulfillment(ctx, req.FulfillmentID, req.LineItems); err != nil {
		c.metrics.FulfillmentResult("rejected")
		c.logger.Warn("Fulfillment rejected",
			zap.String("order_id", req.OrderID),
			zap.String("fulfillment_id", req.FulfillmentID),
			zap.Error(err),
		)
		var rejected *errors.ErrFulfillmentRejected
		if stderrors.As(err, &rejected) {
			return nil, rejected
		}
		return nil, &errors.ErrFulfillmentRejected{Err: err}
	}

	var marked []string
	saved, err := SaveWithRetry(ctx, order,
		func(ctx context.Context) (*domain.Order, error) {
			return liveOrder(ctx, c.orders, req.OrderID)
		},
		func(o *domain.Order) {
			marked = o.MarkFulfilled(req.LineItems)
		},
		c.orders.Update,
		c.metrics.ConflictRetry,
	)
	if err != nil {
		// The platform already shipped; the local copy is stale until the next sync.
		c.metrics.FulfillmentResult("save_error")
		c.logger.Error("Failed to save fulfilled order", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, err
	}

	c.metrics.FulfillmentResult("ok")
	c.logger.Info("Fulfilled order line items",
		zap.String("order_id", saved.OrderID),
		zap.Strings("line_items", marked),
		zap.String("fulfillment_status", saved.FulfillmentStatus.String()),
	)
	return &FulfillmentResult{Order: saved, Marked: marked}, nil
}

// FulfillSingle fulfills exactly one fulfillment item
func (c *FulfillmentCoordinator) FulfillSingle(ctx context.Context, req domain.SingleFulfillmentRequest) (*FulfillmentResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}
	return c.Fulfill(ctx, domain.FulfillmentRequest{
		OrderID:       req.OrderID,
		FulfillmentID: req.FulfillmentID,
		LineItems: []domain.FulfillmentLine{
			{FulfillmentItemID: req.FulfillmentItemID, Quantity: req.Quantity},
		},
	})
}

// FulfillRemaining fulfills every active, mapped line item that is not fulfilled yet
func (c *FulfillmentCoordinator) FulfillRemaining(ctx context.Context, orderID string) (*FulfillmentResult, error) {
	order, err := liveOrder(ctx, c.orders, orderID)
	if err != nil {
		return nil, err
	}
	if order.FulfillmentID == nil || *order.FulfillmentID == "" {
		return nil, &errors.ErrValidation{Message: "order has no fulfillment id"}
	}
	lines := order.RemainingFulfillmentLines()
	if len(lines) == 0 {
		return nil, &errors.ErrValidation{Message: "no line items left to fulfill"}
	}
	return c.Fulfill(ctx, domain.FulfillmentRequest{
		OrderID:       orderID,
		FulfillmentID: *order.FulfillmentID,
		LineItems:     lines,
	})
}

// validationFailure turns validator errors into an ErrValidation keyed by field
func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return &errors.ErrValidation{Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return &errors.ErrValidation{
		Message: "invalid fields: " + strings.Join(names, ", "),
		Fields:  fields,
	}
}
