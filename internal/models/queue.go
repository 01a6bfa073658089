package models

import (
	"time"

	"gorm.io/gorm"
)

// Queue entry statuses.
const (
	QueueStatusWaiting = "waiting"
	QueueStatusServing = "serving"
	QueueStatusDone    = "done"
	QueueStatusLeft    = "left"
)

// QueueEntry records one visit to the intake queue. The live ordering is
// kept in Redis; rows here are the durable trail for reporting.
type QueueEntry struct {
	gorm.Model
	UserID   uint       `gorm:"index;not null" json:"user_id"`
	Purpose  string     `json:"purpose,omitempty"`
	Status   string     `gorm:"index;not null;default:waiting" json:"status"`
	ServedAt *time.Time `json:"served_at,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

type CheckInRequest struct {
	Purpose string `json:"purpose,omitempty" binding:"max=200"`
}

type QueuePositionResponse struct {
	Position      int    `json:"position"`
	TotalInQueue  int    `json:"total_in_queue"`
	EstimatedWait string `json:"estimated_wait"`
}
