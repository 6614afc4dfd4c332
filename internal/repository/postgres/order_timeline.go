package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

type orderTimelineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderTimelineRepository creates a new order timeline repository
func NewOrderTimelineRepository(db *sql.DB, logger *zap.Logger) *orderTimelineRepository {
	return &orderTimelineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderTimelineRepository) Append(ctx context.Context, entry *domain.OrderTimelineEntry) error {
	query := `
		INSERT INTO order_timeline (id, order_id, action, timestamp, performed_by, changes, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = domain.DefaultActor
	}

	var changesJSON []byte
	var err error
	if entry.Changes != nil {
		changesJSON, err = json.Marshal(entry.Changes)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.OrderID,
		string(entry.Action),
		entry.Timestamp,
		entry.PerformedBy,
		changesJSON,
		entry.Message,
	)

	if err != nil {
		r.logger.Error("Failed to append order timeline entry", zap.String("order_id", entry.OrderID), zap.Error(err))
		return err
	}

	return nil
}

// ListByOrderID returns the entries of an order, newest first
func (r *orderTimelineRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.OrderTimelineEntry, error) {
	query := `
		SELECT id, order_id, action, timestamp, performed_by, changes, message
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order timeline", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.OrderTimelineEntry
	for rows.Next() {
		var entry domain.OrderTimelineEntry
		var action string
		var changesJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&action,
			&entry.Timestamp,
			&entry.PerformedBy,
			&changesJSON,
			&entry.Message,
		)

		if err != nil {
			return nil, err
		}
		entry.Action = domain.TimelineAction(action)

		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
				return nil, err
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
