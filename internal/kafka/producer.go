package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"casework-service/internal/models"

	"github.com/IBM/sarama"
)

func newSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "casework-service"

	return sarama.NewSyncProducer(brokers, config)
}

// Producer mirrors notification activity onto the event stream so the
// reporting pipeline and the SMS relay can consume it.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	p, err := newSyncProducer(brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: p, topic: topic}, nil
}

type notificationCreatedEvent struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Title          string `json:"title"`
	Priority       string `json:"priority"`
	CreatedAt      string `json:"created_at"`
}

func (p *Producer) PublishNotificationCreated(n *models.Notification) error {
	payload, err := json.Marshal(notificationCreatedEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Priority:       n.Priority,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", n.UserID)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
