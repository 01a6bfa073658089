package postgres

import (
	"fmt"

	"casework-service/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns the newest notifications first.
func (r *NotificationRepository) ListByUser(userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListUnreadByUser seeds a freshly connected client with its backlog.
func (r *NotificationRepository) ListUnreadByUser(userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.Where("user_id = ? AND read = false", userID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *NotificationRepository) MarkRead(userID, id uint) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
