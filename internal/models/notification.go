package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification is a persisted message for one user. Delivery over the
// real-time channel is best-effort; the row is the source of truth and
// seeds the backlog when a client reconnects.
type Notification struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Title     string `gorm:"not null" json:"title"`
	Message   string `gorm:"not null" json:"message"`
	Priority  string `gorm:"not null;default:normal" json:"priority"`
	ActionURL string `json:"action_url,omitempty"`
	Read      bool   `gorm:"index;default:false" json:"read"`
}

type CreateNotificationRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	Title     string `json:"title" binding:"required,max=200"`
	Message   string `json:"message" binding:"required"`
	Priority  string `json:"priority" binding:"omitempty,oneof=low normal high"`
	ActionURL string `json:"action_url,omitempty"`
}

type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	ActionURL string    `json:"action_url,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		ActionURL: n.ActionURL,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
