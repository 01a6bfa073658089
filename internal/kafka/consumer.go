package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"casework-service/internal/services"

	"github.com/segmentio/kafka-go"
)

type queueCommand struct {
	Action  string `json:"action"`
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
}

// QueueConsumer applies check-in and leave commands produced by the
// front-desk kiosk to the intake queue.
type QueueConsumer struct {
	reader *kafka.Reader
	queue  *services.QueueService
	logger *slog.Logger
}

func NewQueueConsumer(brokers []string, topic, groupID string, queue *services.QueueService, logger *slog.Logger) *QueueConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &QueueConsumer{reader: reader, queue: queue, logger: logger}
}

// Run blocks until ctx is cancelled or the reader is closed.
func (c *QueueConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Error("kafka read failed", "error", err)
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *QueueConsumer) handle(ctx context.Context, msg kafka.Message) {
	var cmd queueCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		c.logger.Warn("dropping malformed queue command", "offset", msg.Offset, "error", err)
		return
	}

	switch cmd.Action {
	case "check_in":
		if _, err := c.queue.CheckIn(ctx, cmd.UserID, cmd.Purpose); err != nil && !errors.Is(err, services.ErrAlreadyQueued) {
			c.logger.Error("kiosk check-in failed", "user_id", cmd.UserID, "error", err)
		}
	case "leave":
		if err := c.queue.Leave(ctx, cmd.UserID); err != nil && !errors.Is(err, services.ErrNotInQueue) {
			c.logger.Error("kiosk leave failed", "user_id", cmd.UserID, "error", err)
		}
	default:
		c.logger.Warn("unknown queue command", "action", cmd.Action, "offset", msg.Offset)
	}
}

func (c *QueueConsumer) Close() error {
	return c.reader.Close()
}
