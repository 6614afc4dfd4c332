package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/events"
	"github.com/akhilmk-dev/menahub/internal/repository"
)

// TimelineService appends order audit entries and fans them out
type TimelineService struct {
	repo      repository.OrderTimelineRepository
	publisher events.TimelinePublisher
	logger    *zap.Logger
}

// NewTimelineService creates a timeline service. A nil publisher drops events.
func NewTimelineService(repo repository.OrderTimelineRepository, publisher events.TimelinePublisher, logger *zap.Logger) *TimelineService {
	if publisher == nil {
		publisher = events.NewNopTimelinePublisher()
	}
	return &TimelineService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Record appends one entry. Publishing is best-effort; only the append can fail the call.
func (s *TimelineService) Record(
	ctx context.Context,
	orderID string,
	action domain.TimelineAction,
	actor string,
	changes map[string]interface{},
	message string,
) (*domain.OrderTimelineEntry, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("unknown timeline action %q", action)
	}
	if actor == "" {
		actor = domain.DefaultActor
	}
	if changes == nil {
		changes = map[string]interface{}{}
	}

	entry := &domain.OrderTimelineEntry{
		ID:          uuid.New(),
		OrderID:     orderID,
		Action:      action,
		Timestamp:   time.Now(),
		PerformedBy: actor,
		Changes:     changes,
		Message:     message,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append timeline entry",
			zap.String("order_id", orderID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, entry); err != nil {
		s.logger.Warn("Failed to publish timeline entry", zap.String("order_id", orderID), zap.Error(err))
	}
	return entry, nil
}

// List returns the timeline of an order, newest first
func (s *TimelineService) List(ctx context.Context, orderID string) ([]*domain.OrderTimelineEntry, error) {
	return s.repo.ListByOrderID(ctx, orderID)
}
