package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/swagatsuman/delivery-app-sub002/orders"
)

// StatusChanged is the event emitted after a successful order status update.
type StatusChanged struct {
	EventID         string        `json:"event_id"`
	OrderID         string        `json:"order_id"`
	EstablishmentID string        `json:"establishment_id"`
	Status          orders.Status `json:"status"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Publisher pushes order status events to Kafka. It is an outward
// observation hook for collaborators (notifications, analytics); publishing
// is best-effort and failures must never affect the status update itself.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}
	return &Publisher{producer: producer, topic: topic}, nil
}

// PublishStatusChanged emits one StatusChanged event for the order.
func (p *Publisher) PublishStatusChanged(o orders.Order) error {
	event := StatusChanged{
		EventID:         uuid.NewString(),
		OrderID:         o.ID,
		EstablishmentID: o.EstablishmentID,
		Status:          o.Status,
		UpdatedAt:       o.UpdatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(o.ID),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

// Close releases the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
