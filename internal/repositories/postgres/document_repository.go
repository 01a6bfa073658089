package postgres

import (
	"fmt"
	"time"

	"casework-service/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *models.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FindByID(id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByUser(userID uint) ([]models.Document, error) {
	var out []models.Document
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *DocumentRepository) ListPending() ([]models.Document, error) {
	var out []models.Document
	err := r.db.Where("status = ?", models.DocumentPending).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *DocumentRepository) SetVerification(id, verifierID uint, status, note string) error {
	now := time.Now()
	res := r.db.Model(&models.Document{}).Where("id = ?", id).Updates(map[string]any{
		"status":      status,
		"note":        note,
		"verified_by": verifierID,
		"verified_at": &now,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set verification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
