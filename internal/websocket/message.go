package websocket

import "time"

// EventType distinguishes the outbound envelope shapes.
type EventType string

const (
	EventQueueUpdate      EventType = "queue_update"
	EventNotification     EventType = "notification"
	EventDocumentVerified EventType = "document_verified"
	EventAnnouncement     EventType = "announcement"
)

// QueueUpdateEvent tells a waiting visitor where they stand in the intake
// queue. Also broadcast on the queue_updates category for staff displays.
type QueueUpdateEvent struct {
	Type          EventType `json:"type"`
	UserID        uint      `json:"user_id"`
	Position      int       `json:"position"`
	EstimatedWait string    `json:"estimated_wait"`
	TotalInQueue  int       `json:"total_in_queue"`
	Timestamp     string    `json:"timestamp"`
}

// NotificationEvent is the push shape for a persisted notification.
type NotificationEvent struct {
	Type      EventType `json:"type"`
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	ActionURL string    `json:"action_url,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// DocumentEvent notifies the admin document stream about a verification
// status change.
type DocumentEvent struct {
	Type       EventType `json:"type"`
	DocumentID uint      `json:"document_id"`
	UserID     uint      `json:"user_id"`
	Status     string    `json:"status"`
	Timestamp  string    `json:"timestamp"`
}

// AnnouncementEvent is a broadcast to every live connection.
type AnnouncementEvent struct {
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
}

// EventTimestamp formats t the way every envelope carries it.
func EventTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewQueueUpdateEvent(userID uint, position, total int, estimatedWait time.Duration, now time.Time) QueueUpdateEvent {
	return QueueUpdateEvent{
		Type:          EventQueueUpdate,
		UserID:        userID,
		Position:      position,
		EstimatedWait: estimatedWait.String(),
		TotalInQueue:  total,
		Timestamp:     EventTimestamp(now),
	}
}

func NewNotificationEvent(id, userID uint, title, message, priority, actionURL string, now time.Time) NotificationEvent {
	return NotificationEvent{
		Type:      EventNotification,
		ID:        id,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Priority:  priority,
		ActionURL: actionURL,
		Timestamp: EventTimestamp(now),
	}
}

func NewDocumentEvent(documentID, userID uint, status string, now time.Time) DocumentEvent {
	return DocumentEvent{
		Type:       EventDocumentVerified,
		DocumentID: documentID,
		UserID:     userID,
		Status:     status,
		Timestamp:  EventTimestamp(now),
	}
}

func NewAnnouncementEvent(title, message string, now time.Time) AnnouncementEvent {
	return AnnouncementEvent{
		Type:      EventAnnouncement,
		Title:     title,
		Message:   message,
		Timestamp: EventTimestamp(now),
	}
}
