package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type removedLineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRemovedLineItemRepository creates a new removed line item repository
func NewRemovedLineItemRepository(db *sql.DB, logger *zap.Logger) *removedLineItemRepository {
	return &removedLineItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *removedLineItemRepository) Accumulate(ctx context.Context, item *domain.RemovedLineItem) error {
	if err := accumulateRemoved(ctx, r.db, item); err != nil {
		r.logger.Error("Failed to accumulate removed line item",
			zap.String("order_id", item.OrderID),
			zap.String("line_item_id", item.LineItemID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// accumulateRemoved inserts the record or adds its quantity to the existing one.
// Descriptive fields keep the values captured at the first removal.
func accumulateRemoved(ctx context.Context, ex execer, item *domain.RemovedLineItem) error {
	query := `
		INSERT INTO removed_line_items (
			id, order_id, line_item_id, name, price, quantity, sku, product_id, variant_id,
			title, vendor_id, vendor_name, removed_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (order_id, line_item_id) DO UPDATE
		SET quantity = removed_line_items.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.RemovedAt.IsZero() {
		item.RemovedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	_, err := ex.ExecContext(ctx, query,
		item.ID,
		item.OrderID,
		item.LineItemID,
		item.Name,
		item.Price,
		item.Quantity,
		item.SKU,
		item.ProductID,
		item.VariantID,
		item.Title,
		item.VendorID,
		item.VendorName,
		item.RemovedAt,
		item.UpdatedAt,
	)
	return err
}

const removedColumns = `id, order_id, line_item_id, name, price, quantity, sku, product_id, variant_id,
			title, vendor_id, vendor_name, removed_at, updated_at`

func (r *removedLineItemRepository) Get(ctx context.Context, orderID, lineItemID string) (*domain.RemovedLineItem, error) {
	query := `
		SELECT ` + removedColumns + `
		FROM removed_line_items
		WHERE order_id = $1 AND line_item_id = $2
	`

	item, err := scanRemoved(r.db.QueryRowContext(ctx, query, orderID, lineItemID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "removed_line_item", ID: orderID + "/" + lineItemID}
	}
	if err != nil {
		r.logger.Error("Failed to get removed line item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *removedLineItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.RemovedLineItem, error) {
	query := `
		SELECT ` + removedColumns + `
		FROM removed_line_items
		WHERE order_id = $1
		ORDER BY removed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list removed line items", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.RemovedLineItem
	for rows.Next() {
		item, err := scanRemoved(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanRemoved(row rowScanner) (*domain.RemovedLineItem, error) {
	var item domain.RemovedLineItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.LineItemID,
		&item.Name,
		&item.Price,
		&item.Quantity,
		&item.SKU,
		&item.ProductID,
		&item.VariantID,
		&item.Title,
		&item.VendorID,
		&item.VendorName,
		&item.RemovedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
