package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

const orderColumns = `order_id, fulfillment_id, name, order_number, email, phone, payment_gateway,
			currency, financial_status, fulfillment_status, total_price, subtotal_price, total_tax,
			total_discounts, shipping_address, customer, line_items, cancel_reason, cancelled_at,
			deleted_at, version, created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.Version == 0 {
		order.Version = 1
	}

	docs, err := marshalOrderDocuments(order)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.OrderID,
		order.FulfillmentID,
		order.Name,
		order.OrderNumber,
		order.Email,
		order.Phone,
		order.PaymentGateway,
		order.Currency,
		string(order.FinancialStatus),
		string(order.FulfillmentStatus),
		order.TotalPrice,
		order.SubtotalPrice,
		order.TotalTax,
		order.TotalDiscounts,
		docs.shippingAddress,
		docs.customer,
		docs.lineItems,
		order.CancelReason,
		order.CancelledAt,
		order.DeletedAt,
		order.Version,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.String("order_id", order.OrderID), zap.Error(err))
		return conflictOr(err, fmt.Sprintf("order %s already exists", order.OrderID))
	}

	return nil
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.update(ctx, r.db, order)
}

// SaveReconciliation writes the order and accumulates the removed quantities in one transaction.
func (r *orderRepository) SaveReconciliation(ctx context.Context, order *domain.Order, removed []domain.RemovedLineItem) error {
	saved := *order
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.update(ctx, tx, &saved); err != nil {
			return err
		}
		for i := range removed {
			if err := accumulateRemoved(ctx, tx, &removed[i]); err != nil {
				r.logger.Error("Failed to accumulate removed line item",
					zap.String("order_id", order.OrderID),
					zap.String("line_item_id", removed[i].LineItemID),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Version = saved.Version
	order.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *orderRepository) update(ctx context.Context, ex execer, order *domain.Order) error {
	query := `
		UPDATE orders
		SET fulfillment_id = $3, name = $4, order_number = $5, email = $6, phone = $7,
			payment_gateway = $8, currency = $9, financial_status = $10, fulfillment_status = $11,
			total_price = $12, subtotal_price = $13, total_tax = $14, total_discounts = $15,
			shipping_address = $16, customer = $17, line_items = $18, cancel_reason = $19,
			cancelled_at = $20, deleted_at = $21, updated_at = $22, version = version + 1
		WHERE order_id = $1 AND version = $2
	`

	docs, err := marshalOrderDocuments(order)
	if err != nil {
		return err
	}
	now := time.Now()

	result, err := ex.ExecContext(ctx, query,
		order.OrderID,
		order.Version,
		order.FulfillmentID,
		order.Name,
		order.OrderNumber,
		order.Email,
		order.Phone,
		order.PaymentGateway,
		order.Currency,
		string(order.FinancialStatus),
		string(order.FulfillmentStatus),
		order.TotalPrice,
		order.SubtotalPrice,
		order.TotalTax,
		order.TotalDiscounts,
		docs.shippingAddress,
		docs.customer,
		docs.lineItems,
		order.CancelReason,
		order.CancelledAt,
		order.DeletedAt,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("order_id", order.OrderID), zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		r.logger.Warn("Order version mismatch",
			zap.String("order_id", order.OrderID),
			zap.Int("expected_version", order.Version),
		)
		return &errors.ErrConcurrencyConflict{Resource: "order", ID: order.OrderID}
	}

	order.Version++
	order.UpdatedAt = now
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	var conditions []string
	var args []interface{}
	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filter.FinancialStatus != "" {
		args = append(args, filter.FinancialStatus)
		conditions = append(conditions, fmt.Sprintf("financial_status = $%d", len(args)))
	}
	if filter.FulfillmentStatus != "" {
		args = append(args, filter.FulfillmentStatus)
		conditions = append(conditions, fmt.Sprintf("fulfillment_status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return r.page(ctx, where, args, filter.Limit, filter.Offset)
}

// vendorItemPath matches a line item of vendor $v that has not been soft-deleted
const vendorItemPath = `$[*] ? (@.vendor_id == $v && (@.deleted_date == null || !(exists(@.deleted_date))))`

// ListByVendor returns active orders that carry at least one active line item of the vendor.
func (r *orderRepository) ListByVendor(ctx context.Context, vendorID string, limit, offset int) ([]*domain.Order, int, error) {
	where := "WHERE deleted_at IS NULL AND jsonb_path_exists(line_items, '" + vendorItemPath + "', jsonb_build_object('v', $1::text))"
	return r.page(ctx, where, []interface{}{vendorID}, limit, offset)
}

func (r *orderRepository) page(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	countQuery := "SELECT COUNT(*) FROM orders " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}

type orderDocuments struct {
	shippingAddress []byte
	customer        []byte
	lineItems       []byte
}

func marshalOrderDocuments(order *domain.Order) (orderDocuments, error) {
	var docs orderDocuments
	var err error
	if docs.shippingAddress, err = json.Marshal(order.ShippingAddress); err != nil {
		return docs, fmt.Errorf("marshal shipping address: %w", err)
	}
	if docs.customer, err = json.Marshal(order.Customer); err != nil {
		return docs, fmt.Errorf("marshal customer: %w", err)
	}
	if docs.lineItems, err = json.Marshal(order.LineItems); err != nil {
		return docs, fmt.Errorf("marshal line items: %w", err)
	}
	return docs, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var fulfillmentID sql.NullString
	var paymentGateway sql.NullString
	var cancelReason sql.NullString
	var cancelledAt sql.NullTime
	var deletedAt sql.NullTime
	var financialStatus, fulfillmentStatus string
	var shippingAddressJSON, customerJSON, lineItemsJSON []byte

	err := row.Scan(
		&order.OrderID,
		&fulfillmentID,
		&order.Name,
		&order.OrderNumber,
		&order.Email,
		&order.Phone,
		&paymentGateway,
		&order.Currency,
		&financialStatus,
		&fulfillmentStatus,
		&order.TotalPrice,
		&order.SubtotalPrice,
		&order.TotalTax,
		&order.TotalDiscounts,
		&shippingAddressJSON,
		&customerJSON,
		&lineItemsJSON,
		&cancelReason,
		&cancelledAt,
		&deletedAt,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.FinancialStatus = domain.FinancialStatus(financialStatus)
	order.FulfillmentStatus = domain.FulfillmentStatus(fulfillmentStatus)
	if fulfillmentID.Valid {
		order.FulfillmentID = &fulfillmentID.String
	}
	if paymentGateway.Valid {
		order.PaymentGateway = &paymentGateway.String
	}
	if cancelReason.Valid {
		order.CancelReason = &cancelReason.String
	}
	if cancelledAt.Valid {
		order.CancelledAt = &cancelledAt.Time
	}
	if deletedAt.Valid {
		order.DeletedAt = &deletedAt.Time
	}

	if len(shippingAddressJSON) > 0 {
		if err := json.Unmarshal(shippingAddressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	if len(customerJSON) > 0 {
		if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
	}
	if len(lineItemsJSON) > 0 {
		if err := json.Unmarshal(lineItemsJSON, &order.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
	}

	return &order, nil
}
