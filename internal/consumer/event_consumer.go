package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "checklist-safety/common/redis"
	"checklist-safety/internal/aggregator"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Checklist event types that trigger a board rebuild
const (
	EventInspectionSubmitted = "inspection.submitted"
	EventInspectionUpdated   = "inspection.updated"
	EventTemplateUpdated     = "template.updated"
	EventOrderChanged        = "order.changed"
)

const defaultReadBlock = 5 * time.Second

var errInvalidEvent = errors.New("invalid event")

// BoardRefresher rebuilds the inspection board
type BoardRefresher interface {
	Refresh(ctx context.Context) (*aggregator.Snapshot, error)
}

// EventConsumer reads checklist events from a Redis stream
type EventConsumer struct {
	redisClient  *redis.Client
	refresher    BoardRefresher
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

// ChecklistEvent one stream entry
type ChecklistEvent struct {
	EventType    string `json:"event_type"`
	InspectionID string `json:"inspection_id,omitempty"`
	EquipmentID  string `json:"equipment_id,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// NewEventConsumer block <= 0 uses a 5s XREADGROUP block
func NewEventConsumer(
	redisClient *redis.Client,
	refresher BoardRefresher,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	block time.Duration,
) *EventConsumer {
	if block <= 0 {
		block = defaultReadBlock
	}
	return &EventConsumer{
		redisClient:  redisClient,
		refresher:    refresher,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        block,
	}
}

// Start consumes until ctx is done
func (c *EventConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
		} else {
			backoffDuration = time.Second
		}
	}
}

// Poll reads one batch and handles it. Returns how many messages were acked.
func (c *EventConsumer) Poll(ctx context.Context) (int, error) {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
		c.block,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	// a batch of events needs one rebuild, not one per message
	refresh := false
	var pending []string
	acked := 0
	for _, msg := range messages {
		event, err := c.parseEvent(msg)
		if err != nil {
			c.logger.Warn("Dropping malformed event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			acked += c.ack(ctx, msg.ID)
			continue
		}

		if !triggersRefresh(event.EventType) {
			c.logger.Warn("Unknown event type",
				zap.String("message_id", msg.ID),
				zap.String("event_type", event.EventType),
			)
			acked += c.ack(ctx, msg.ID)
			continue
		}

		c.logger.Debug("Processing checklist event",
			zap.String("event_type", event.EventType),
			zap.String("inspection_id", event.InspectionID),
			zap.String("equipment_id", event.EquipmentID),
		)
		refresh = true
		pending = append(pending, msg.ID)
	}

	if !refresh {
		return acked, nil
	}

	if _, err := c.refresher.Refresh(ctx); err != nil {
		// left pending so the group can redeliver
		c.logger.Error("Failed to refresh inspection board",
			zap.Int("event_count", len(pending)),
			zap.Error(err),
		)
		return acked, nil
	}

	for _, id := range pending {
		acked += c.ack(ctx, id)
	}
	return acked, nil
}

func triggersRefresh(eventType string) bool {
	switch eventType {
	case EventInspectionSubmitted, EventInspectionUpdated, EventTemplateUpdated, EventOrderChanged:
		return true
	}
	return false
}

// parseEvent reads the JSON "data" field, falling back to flat fields
func (c *EventConsumer) parseEvent(msg rediscommon.StreamMessage) (*ChecklistEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event ChecklistEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil && event.EventType != "" {
			return &event, nil
		}
	}

	event := &ChecklistEvent{}
	if v, ok := msg.Values["event_type"].(string); ok {
		event.EventType = v
	}
	if v, ok := msg.Values["inspection_id"].(string); ok {
		event.InspectionID = v
	}
	if v, ok := msg.Values["equipment_id"].(string); ok {
		event.EquipmentID = v
	}
	if v, ok := msg.Values["order_id"].(string); ok {
		event.OrderID = v
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", errInvalidEvent)
	}
	return event, nil
}

func (c *EventConsumer) ack(ctx context.Context, messageID string) int {
	if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, messageID); err != nil {
		c.logger.Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return 0
	}
	return 1
}
