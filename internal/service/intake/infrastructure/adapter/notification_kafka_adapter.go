// internal/service/intake/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"boost/internal/pkg/mq"
	"boost/internal/service/intake/domain/port"
)

// OrderConfirmedEvent 是发布到确认主题的消息结构。
type OrderConfirmedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalPrice  float64   `json:"totalPrice"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// ConfirmationKafkaAdapter 是 port.ConfirmationNotifier 的 Kafka 实现。
type ConfirmationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewConfirmationKafkaAdapter(writer *kafka.Writer) *ConfirmationKafkaAdapter {
	return &ConfirmationKafkaAdapter{writer: writer}
}

var _ port.ConfirmationNotifier = (*ConfirmationKafkaAdapter)(nil)

func (a *ConfirmationKafkaAdapter) NotifyOrderConfirmed(ctx context.Context, orderID, userID string, totalPrice float64) error {
	event := OrderConfirmedEvent{
		OrderID:     orderID,
		UserID:      userID,
		TotalPrice:  totalPrice,
		ConfirmedAt: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal confirmation event")
	}
	// 以 userID 作 key，保证同一用户的事件有序
	if err := mq.ProduceMessage(ctx, a.writer, []byte(userID), payload); err != nil {
		return errors.Wrap(err, "failed to produce confirmation event")
	}
	return nil
}
