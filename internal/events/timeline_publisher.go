package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// TimelinePublisher fans appended timeline entries out to other systems
type TimelinePublisher interface {
	Publish(ctx context.Context, entry *domain.OrderTimelineEntry) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type kafkaTimelinePublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaTimelinePublisher creates a publisher writing to topic, keyed by order id
// so the entries of one order stay in one partition.
func NewKafkaTimelinePublisher(brokers []string, topic string, logger *zap.Logger) TimelinePublisher {
	w := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkaGo.RequireOne,
	}
	return newKafkaTimelinePublisher(w, logger)
}

func newKafkaTimelinePublisher(w messageWriter, logger *zap.Logger) *kafkaTimelinePublisher {
	return &kafkaTimelinePublisher{writer: w, logger: logger}
}

// TimelineEvent is the message value published for each timeline entry
type TimelineEvent struct {
	ID          string                 `json:"id"`
	OrderID     string                 `json:"order_id"`
	Action      string                 `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	PerformedBy string                 `json:"performed_by"`
	Changes     map[string]interface{} `json:"changes,omitempty"`
	Message     string                 `json:"message"`
}

func (p *kafkaTimelinePublisher) Publish(ctx context.Context, entry *domain.OrderTimelineEntry) error {
	payload, err := json.Marshal(TimelineEvent{
		ID:          entry.ID.String(),
		OrderID:     entry.OrderID,
		Action:      string(entry.Action),
		Timestamp:   entry.Timestamp,
		PerformedBy: entry.PerformedBy,
		Changes:     entry.Changes,
		Message:     entry.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal timeline event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(entry.OrderID),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "action", Value: []byte(entry.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish timeline event: %w", err)
	}
	p.logger.Debug("Published timeline event",
		zap.String("order_id", entry.OrderID),
		zap.String("action", string(entry.Action)),
	)
	return nil
}

func (p *kafkaTimelinePublisher) Close() error {
	return p.writer.Close()
}

type nopTimelinePublisher struct{}

// NewNopTimelinePublisher returns a publisher that drops entries, used when no brokers are configured
func NewNopTimelinePublisher() TimelinePublisher {
	return nopTimelinePublisher{}
}

func (nopTimelinePublisher) Publish(context.Context, *domain.OrderTimelineEntry) error { return nil }

func (nopTimelinePublisher) Close() error { return nil }
