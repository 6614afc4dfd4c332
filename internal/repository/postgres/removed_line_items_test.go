package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

var removedRowColumns = []string{
	"id", "order_id", "line_item_id", "name", "price", "quantity", "sku", "product_id", "variant_id",
	"title", "vendor_id", "vendor_name", "removed_at", "updated_at",
}

func TestRemovedLineItemRepository_Accumulate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRemovedLineItemRepository(db, zap.NewNop())

	mock.ExpectExec(`(?s)INSERT INTO removed_line_items.*quantity = removed_line_items.quantity \+ EXCLUDED.quantity`).
		WithArgs(sqlmock.AnyArg(), "O1", "L1", "Widget", "5.5", 2, "W-1", "P1", "V1", "Widget", "v1", "Acme",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &domain.RemovedLineItem{
		OrderID: "O1", LineItemID: "L1", Name: "Widget", Price: decimal.RequireFromString("5.5"), Quantity: 2,
		SKU: "W-1", ProductID: "P1", VariantID: "V1", Title: "Widget", VendorID: "v1", VendorName: "Acme",
	}
	require.NoError(t, repo.Accumulate(context.Background(), item))
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.False(t, item.RemovedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovedLineItemRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRemovedLineItemRepository(db, zap.NewNop())

		now := time.Now()
		mock.ExpectQuery(`(?s)FROM removed_line_items\s+WHERE order_id = \$1 AND line_item_id = \$2`).
			WithArgs("O1", "L1").
			WillReturnRows(sqlmock.NewRows(removedRowColumns).
				AddRow(uuid.New().String(), "O1", "L1", "Widget", "5.50", 10, "W-1", "P1", "V1", "Widget", "", "", now, now))

		item, err := repo.Get(context.Background(), "O1", "L1")
		require.NoError(t, err)
		assert.Equal(t, 10, item.Quantity)
		assert.True(t, decimal.RequireFromString("5.5").Equal(item.Price))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRemovedLineItemRepository(db, zap.NewNop())

		mock.ExpectQuery(`FROM removed_line_items`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "O1", "L9")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestOrderTimelineRepository(t *testing.T) {
	t.Run("append defaults actor and id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderTimelineRepository(db, zap.NewNop())

		mock.ExpectExec(`INSERT INTO order_timeline`).
			WithArgs(sqlmock.AnyArg(), "O1", "cancelled", sqlmock.AnyArg(), "system", []byte(`{"reason":"customer"}`), "Order cancelled").
			WillReturnResult(sqlmock.NewResult(0, 1))

		entry := &domain.OrderTimelineEntry{
			OrderID: "O1",
			Action:  domain.TimelineCancelled,
			Changes: map[string]interface{}{"reason": "customer"},
			Message: "Order cancelled",
		}
		require.NoError(t, repo.Append(context.Background(), entry))
		assert.Equal(t, domain.DefaultActor, entry.PerformedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list newest first", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderTimelineRepository(db, zap.NewNop())

		now := time.Now()
		mock.ExpectQuery(`(?s)FROM order_timeline\s+WHERE order_id = \$1\s+ORDER BY timestamp DESC`).
			WithArgs("O1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "action", "timestamp", "performed_by", "changes", "message"}).
				AddRow(uuid.New().String(), "O1", "updated", now, "system", []byte(`{"added":["L2"]}`), "Order updated").
				AddRow(uuid.New().String(), "O1", "created", now.Add(-time.Hour), "system", nil, "Order created"))

		entries, err := repo.ListByOrderID(context.Background(), "O1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.TimelineUpdated, entries[0].Action)
		assert.Contains(t, entries[0].Changes, "added")
		assert.Nil(t, entries[1].Changes)
	})
}
