package models

import (
	"time"

	"gorm.io/gorm"
)

// Document verification statuses.
const (
	DocumentPending  = "pending"
	DocumentVerified = "verified"
	DocumentRejected = "rejected"
)

// Document is a file a visitor uploaded for verification (ID card, proof of
// address). The file itself lives in object storage; this row tracks the
// verification workflow.
type Document struct {
	gorm.Model
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Name       string     `gorm:"not null" json:"name"`
	ObjectKey  string     `gorm:"not null" json:"-"`
	URL        string     `json:"url"`
	Status     string     `gorm:"index;not null;default:pending" json:"status"`
	VerifiedBy *uint      `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Note       string     `json:"note,omitempty"`
}

type VerifyDocumentRequest struct {
	Status string `json:"status" binding:"required,oneof=verified rejected"`
	Note   string `json:"note,omitempty" binding:"max=500"`
}
