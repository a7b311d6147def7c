package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"checklist-safety/internal/models"

	"go.uber.org/zap"
)

// Publisher delivers newly stored alerts to subscribers
type Publisher interface {
	PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error
}

// MessagePublisher broker side of MQTTNotifier, satisfied by common/mqtt.Client
type MessagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier publishes one JSON message per alert
type MQTTNotifier struct {
	client MessagePublisher
	topic  string
	qos    byte
	logger *zap.Logger
}

// NewMQTTNotifier topic is the base topic; messages go to <topic>/<equipment_id>
func NewMQTTNotifier(client MessagePublisher, topic string, qos byte, logger *zap.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		client: client,
		topic:  topic,
		qos:    qos,
		logger: logger,
	}
}

// AlertTopic topic for one alert
func (n *MQTTNotifier) AlertTopic(alert models.AlertRecord) string {
	if alert.EquipmentID == "" {
		return n.topic
	}
	return n.topic + "/" + alert.EquipmentID
}

// PublishAlerts stops at the first failed publish
func (n *MQTTNotifier) PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error {
	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert %s: %w", alert.ID, err)
		}

		topic := n.AlertTopic(alert)
		if err := n.client.Publish(topic, n.qos, false, payload); err != nil {
			n.logger.Error("Failed to publish alert",
				zap.String("alert_id", alert.ID),
				zap.String("topic", topic),
				zap.Error(err),
			)
			return err
		}

		n.logger.Debug("Published alert",
			zap.String("alert_id", alert.ID),
			zap.String("inspection_id", alert.InspectionID),
			zap.String("topic", topic),
		)
	}
	return nil
}

// NopNotifier used when MQTT is disabled
type NopNotifier struct{}

func (NopNotifier) PublishAlerts(context.Context, []models.AlertRecord) error { return nil }
