package services

import (
	"errors"
	"log/slog"
	"time"

	"casework-service/internal/models"
	"casework-service/internal/websocket"
)

// Dispatcher is the slice of the connection manager the services need.
type Dispatcher interface {
	BroadcastToUser(userID uint, payload any) error
	BroadcastToCategory(category string, payload any)
	BroadcastAll(payload any)
}

// EventPublisher mirrors notification activity onto the event stream for
// downstream consumers (reporting, the SMS relay).
type EventPublisher interface {
	PublishNotificationCreated(n *models.Notification) error
}

// NotificationStore is satisfied by postgres.NotificationRepository.
type NotificationStore interface {
	Create(n *models.Notification) error
	ListByUser(userID uint, limit int) ([]models.Notification, error)
	ListUnreadByUser(userID uint) ([]models.Notification, error)
	MarkRead(userID, id uint) error
}

type NotificationService struct {
	repo       NotificationStore
	dispatcher Dispatcher
	publisher  EventPublisher
}

func NewNotificationService(repo NotificationStore, dispatcher Dispatcher, publisher EventPublisher) *NotificationService {
	return &NotificationService{repo: repo, dispatcher: dispatcher, publisher: publisher}
}

// Create persists the notification, then pushes it to the user's live
// connections. An offline user is not an error: the row waits as backlog
// until the next connect.
func (s *NotificationService) Create(req *models.CreateNotificationRequest) (*models.NotificationResponse, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	n := &models.Notification{
		UserID:    req.UserID,
		Title:     req.Title,
		Message:   req.Message,
		Priority:  priority,
		ActionURL: req.ActionURL,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNotificationCreated(n); err != nil {
			slog.Error("Failed to publish notification event", "notificationID", n.ID, "error", err)
		}
	}

	s.push(n)

	resp := n.ToResponse()
	return &resp, nil
}

func (s *NotificationService) push(n *models.Notification) {
	event := websocket.NewNotificationEvent(n.ID, n.UserID, n.Title, n.Message, n.Priority, n.ActionURL, time.Now())
	if err := s.dispatcher.BroadcastToUser(n.UserID, event); err != nil {
		if errors.Is(err, websocket.ErrNoActiveConnections) {
			slog.Info("User offline, notification queued as backlog", "userID", n.UserID)
			return
		}
		slog.Error("Failed to push notification", "notificationID", n.ID, "error", err)
	}
}

func (s *NotificationService) ListForUser(userID uint, limit int) ([]models.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToResponse())
	}
	return out, nil
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	return s.repo.MarkRead(userID, id)
}

// SendBacklog replays unread notifications to a user who just connected.
func (s *NotificationService) SendBacklog(userID uint) {
	rows, err := s.repo.ListUnreadByUser(userID)
	if err != nil {
		slog.Error("Failed to load notification backlog", "userID", userID, "error", err)
		return
	}
	for i := range rows {
		s.push(&rows[i])
	}
}
