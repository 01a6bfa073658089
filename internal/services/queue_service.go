package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"casework-service/internal/models"
	"casework-service/internal/repositories/postgres"
	"casework-service/internal/websocket"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	queueKey = "intake_queue"

	// Rough minutes-per-visitor figure used for the estimated wait. The
	// front desk has never asked for anything smarter.
	avgServiceTime = 10 * time.Minute
)

var (
	ErrAlreadyQueued = errors.New("user already in queue")
	ErrNotInQueue    = errors.New("user not in queue")
)

// QueueService keeps the live intake queue in Redis and mirrors every
// change to a durable row plus the real-time channel: each waiting user
// gets their own position update and staff displays get a category
// broadcast.
type QueueService struct {
	redis      *redis.Client
	repo       *postgres.QueueRepository
	dispatcher Dispatcher
}

func NewQueueService(rdb *redis.Client, repo *postgres.QueueRepository, dispatcher Dispatcher) *QueueService {
	return &QueueService{redis: rdb, repo: repo, dispatcher: dispatcher}
}

func (s *QueueService) CheckIn(ctx context.Context, userID uint, purpose string) (*models.QueuePositionResponse, error) {
	if _, err := s.repo.FindOpenByUser(userID); err == nil {
		return nil, ErrAlreadyQueued
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := &models.QueueEntry{UserID: userID, Purpose: purpose, Status: models.QueueStatusWaiting}
	if err := s.repo.Create(entry); err != nil {
		return nil, err
	}

	if err := s.redis.RPush(ctx, queueKey, strconv.FormatUint(uint64(userID), 10)).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue user: %w", err)
	}

	s.broadcastPositions(ctx)
	return s.Position(ctx, userID)
}

func (s *QueueService) Leave(ctx context.Context, userID uint) error {
	entry, err := s.repo.FindOpenByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotInQueue
		}
		return err
	}

	removed, err := s.redis.LRem(ctx, queueKey, 1, strconv.FormatUint(uint64(userID), 10)).Result()
	if err != nil {
		return fmt.Errorf("failed to dequeue user: %w", err)
	}
	if removed == 0 {
		return ErrNotInQueue
	}

	if err := s.repo.UpdateStatus(entry.ID, models.QueueStatusLeft); err != nil {
		return err
	}

	s.broadcastPositions(ctx)
	return nil
}

// ServeNext pops the front of the queue for a staff member. Everyone still
// waiting moves up one place and is told so.
func (s *QueueService) ServeNext(ctx context.Context) (uint, error) {
	val, err := s.redis.LPop(ctx, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotInQueue
		}
		return 0, fmt.Errorf("failed to pop queue: %w", err)
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt queue entry %q: %w", val, err)
	}
	userID := uint(id)

	if entry, err := s.repo.FindOpenByUser(userID); err == nil {
		if err := s.repo.UpdateStatus(entry.ID, models.QueueStatusServing); err != nil {
			slog.Error("Failed to mark queue entry serving", "userID", userID, "error", err)
		}
	}

	s.broadcastPositions(ctx)
	return userID, nil
}

func (s *QueueService) Position(ctx context.Context, userID uint) (*models.QueuePositionResponse, error) {
	pos, err := s.redis.LPos(ctx, queueKey, strconv.FormatUint(uint64(userID), 10), redis.LPosArgs{}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotInQueue
		}
		return nil, err
	}

	total, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return nil, err
	}

	position := int(pos) + 1
	return &models.QueuePositionResponse{
		Position:      position,
		TotalInQueue:  int(total),
		EstimatedWait: (time.Duration(position) * avgServiceTime).String(),
	}, nil
}

// broadcastPositions recomputes every waiting user's place and fans the
// updates out: one targeted push per user, one category broadcast for the
// waiting-room displays.
func (s *QueueService) broadcastPositions(ctx context.Context) {
	ids, err := s.redis.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		slog.Error("Failed to read queue for broadcast", "error", err)
		return
	}

	now := time.Now()
	total := len(ids)
	for i, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		event := websocket.NewQueueUpdateEvent(uint(id), i+1, total,
			time.Duration(i+1)*avgServiceTime, now)

		if err := s.dispatcher.BroadcastToUser(uint(id), event); err != nil &&
			!errors.Is(err, websocket.ErrNoActiveConnections) {
			slog.Error("Failed to push queue update", "userID", id, "error", err)
		}
		s.dispatcher.BroadcastToCategory(websocket.CategoryQueueUpdates, event)
	}
}
