package postgres

import (
	"fmt"
	"time"

	"casework-service/internal/models"

	"gorm.io/gorm"
)

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func (r *QueueRepository) Create(entry *models.QueueEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

// FindOpenByUser returns the user's current waiting or serving entry.
func (r *QueueRepository) FindOpenByUser(userID uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := r.db.Where("user_id = ? AND status IN ?", userID,
		[]string{models.QueueStatusWaiting, models.QueueStatusServing}).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *QueueRepository) UpdateStatus(id uint, status string) error {
	updates := map[string]any{"status": status}
	now := time.Now()
	switch status {
	case models.QueueStatusServing:
		updates["served_at"] = &now
	case models.QueueStatusDone, models.QueueStatusLeft:
		updates["closed_at"] = &now
	}

	res := r.db.Model(&models.QueueEntry{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update queue entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
